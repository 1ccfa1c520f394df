// Package extract turns uploaded resume files into plain text.
//
// The format is sniffed from the bytes, not trusted from the filename. PDF and
// DOCX parsing runs behind a circuit breaker so a burst of malformed uploads
// cannot keep the parsers busy.
package extract

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"resumecritic/internal/config"
	"resumecritic/internal/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ParserVersion is reported by the health endpoint
const ParserVersion = "2"

// Format identifies how a document was parsed
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Document is the result of a successful extraction
type Document struct {
	Text   string
	Format Format
	MIME   string
	Pages  int // PDF pages read; zero for other formats
}

// Extractor extracts text from resume files. It is safe for concurrent use.
type Extractor struct {
	maxPages int
	breaker  *CircuitBreaker
	logger   *errors.Logger
}

// New creates an extractor from configuration
func New(cfg config.ExtractionConfig, logger *errors.Logger) *Extractor {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Extractor{
		maxPages: cfg.MaxPages,
		breaker:  NewCircuitBreaker("extract", cfg.CircuitBreaker, logger),
		logger:   logger,
	}
}

// Detect sniffs the format of data. The filename only breaks ties for generic zip archives.
func Detect(data []byte, filename string) (Format, string, error) {
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("application/pdf"):
		return FormatPDF, mt.String(), nil
	case mt.Is(docxMIME):
		return FormatDOCX, docxMIME, nil
	case mt.Is("application/zip") && strings.EqualFold(filepath.Ext(filename), ".docx"):
		return FormatDOCX, docxMIME, nil
	}
	for p := mt; p != nil; p = p.Parent() {
		if p.Is("text/plain") {
			return FormatText, mt.String(), nil
		}
	}
	return "", mt.String(), errors.NewIOError(errors.ErrCodeUnsupportedFormat,
		fmt.Sprintf("unsupported file type: %s", mt.String()), nil).
		WithContext("filename", filename)
}

// Extract returns the text of data. filename is used for logging and as a format hint.
func (e *Extractor) Extract(data []byte, filename string) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, noText(filename)
	}

	format, mime, err := Detect(data, filename)
	if err != nil {
		return nil, err
	}

	var doc *Document
	if format == FormatText {
		doc = &Document{Text: normalize(string(data)), Format: format, MIME: mime}
	} else {
		doc, err = e.breaker.Execute(func() (*Document, error) {
			return e.parse(format, data)
		})
		if err != nil {
			if isOpenState(err) {
				return nil, errors.NewIOError(errors.ErrCodeExtractorOverload,
					"document extraction is temporarily unavailable", err).
					WithContext("filename", filename)
			}
			if appErr, ok := errors.As(err); ok {
				return nil, appErr.WithContext("filename", filename)
			}
			return nil, err
		}
		doc.MIME = mime
	}

	if strings.TrimSpace(doc.Text) == "" {
		return nil, noText(filename)
	}

	e.logger.Debug("Extracted resume text",
		"filename", filename,
		"format", doc.Format,
		"pages", doc.Pages,
		"chars", len(doc.Text))
	return doc, nil
}

// Stats returns circuit breaker statistics
func (e *Extractor) Stats() map[string]any {
	return e.breaker.GetStats()
}

// IsHealthy reports whether the parsers are accepting work
func (e *Extractor) IsHealthy() bool {
	return e.breaker.IsHealthy()
}

// parse runs a parser, turning panics from malformed input into errors
func (e *Extractor) parse(format Format, data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = errors.NewIOError(errors.ErrCodeExtractionFailed,
				fmt.Sprintf("failed to parse %s", format), fmt.Errorf("parser panic: %v", r))
		}
	}()

	switch format {
	case FormatPDF:
		return e.parsePDF(data)
	case FormatDOCX:
		return parseDOCX(data)
	default:
		return nil, errors.NewInternalError("UNKNOWN_FORMAT", fmt.Sprintf("no parser for %s", format), nil)
	}
}

func (e *Extractor) parsePDF(data []byte) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeExtractionFailed, "failed to read pdf", err)
	}

	pages := r.NumPage()
	if e.maxPages > 0 && pages > e.maxPages {
		pages = e.maxPages
	}

	var sb strings.Builder
	read := 0
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("Skipping unreadable pdf page", "page", i, "error", err)
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
		read++
	}

	return &Document{Text: normalize(sb.String()), Format: FormatPDF, Pages: read}, nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]*>`)
)

func parseDOCX(data []byte) (*Document, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeExtractionFailed, "failed to parse docx", err)
	}
	defer r.Close()

	return &Document{Text: docxText(r.Editable().GetContent()), Format: FormatDOCX}, nil
}

// docxText flattens WordprocessingML into one line per paragraph
func docxText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return normalize(html.UnescapeString(content))
}

func normalize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

func noText(filename string) error {
	return errors.NewIOError(errors.ErrCodeNoTextExtracted, "no text could be extracted from the file", nil).
		WithContext("filename", filename)
}
