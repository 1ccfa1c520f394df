package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"resumecritic/internal/errors"
	"resumecritic/internal/extract"
	"resumecritic/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger    *errors.Logger
	extractor *extract.Extractor
	maxSize   int64
}

// NewFileProcessor creates a new file processor. extractor may be nil when only writing.
func NewFileProcessor(logger *errors.Logger, extractor *extract.Extractor, maxSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &FileProcessor{logger: logger, extractor: extractor, maxSize: maxSize}
}

// ReadFile reads raw bytes from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	if err := utils.ValidateInputFile(filename, fp.maxSize); err != nil {
		if filename != "" && !fileExists(filename) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// ReadText reads a resume or job description file and extracts its text
func (fp *FileProcessor) ReadText(filename string) (string, error) {
	if fp.extractor == nil {
		return "", errors.NewInternalError("NO_EXTRACTOR", "file processor has no extractor", nil)
	}

	if !utils.IsResumeFile(filename) {
		fp.logger.Warn("File extension is not a known resume format, sniffing content",
			"filename", filename)
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return "", err
	}

	doc, err := fp.extractor.Extract(content, filepath.Base(filename))
	if err != nil {
		return "", err
	}

	fp.logger.Debug("Read input file",
		"filename", filename,
		"format", doc.Format,
		"size", utils.FormatFileSize(int64(len(content))))
	return doc.Text, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
