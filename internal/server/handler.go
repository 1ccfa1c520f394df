package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"resumecritic/internal/common"
	"resumecritic/internal/errors"
	"resumecritic/internal/extract"
	"resumecritic/internal/observability"
	"resumecritic/internal/types"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	analysisIDHeader = "X-Analysis-ID"
	tracerName       = "resumecritic.api"

	// multipart parts beyond this are spooled to disk
	multipartMemory = 8 << 20
)

// createAnalyzeHandler critiques a resume posted as JSON
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.analyze")
		defer span.End()

		var req types.AnalyzeResumeInput
		if appErr := parseJSONRequest(r, &req); appErr != nil {
			recordSpanError(span, appErr)
			writeAppError(w, appErr)
			return
		}
		if err := s.validate.Struct(req); err != nil {
			appErr := errors.NewValidationError(errors.ErrCodeInvalidRequest, validationMessage(err), err)
			recordSpanError(span, appErr)
			writeAppError(w, appErr)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("request.industry", req.Industry),
		)

		result, id, err := s.runAnalysis(ctx, om, req.ResumeText, req.JobDescription, req.Industry)
		w.Header().Set(analysisIDHeader, id)
		if err != nil {
			recordSpanError(span, err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.String("analysis.id", id),
			attribute.String("analysis.industry", result.Industry),
			attribute.Int("analysis.score", result.OverallScore),
		)
		writeJSON(w, http.StatusOK, result)
	}
}

// createUploadHandler extracts an uploaded resume file and critiques it.
// Browsers get an HTML page; clients sending Accept: application/json get JSON.
func (s *Server) createUploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.upload")
		defer span.End()
		s.counters.uploads.Add(1)

		fail := func(err error) {
			recordSpanError(span, err)
			if wantsJSON(r) {
				writeAppError(w, err)
				return
			}
			s.renderError(w, err)
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			fail(formError(err))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		upload, err := s.readUpload(r)
		if err != nil {
			fail(err)
			return
		}
		span.SetAttributes(
			attribute.String("upload.filename", upload.filename),
			attribute.Int("upload.size", len(upload.data)),
		)

		doc, err := s.extractor.Extract(upload.data, upload.filename)
		om.GetMetrics().RecordExtraction(ctx, formatLabel(doc, upload), err)
		if err != nil {
			s.Logger.LogError(err, "Resume extraction failed", "filename", upload.filename)
			fail(err)
			return
		}

		jobDescription := r.FormValue("job_description")
		industry := r.FormValue("industry")
		result, id, err := s.runAnalysis(ctx, om, doc.Text, jobDescription, industry)
		w.Header().Set(analysisIDHeader, id)
		if err != nil {
			fail(err)
			return
		}

		if wantsJSON(r) {
			writeJSON(w, http.StatusOK, result)
			return
		}
		s.renderResult(w, resultPage{
			AnalysisID:      id,
			Filename:        upload.filename,
			Format:          string(doc.Format),
			Pages:           doc.Pages,
			IndustryLabel:   s.Critic().Registry().Lookup(result.Industry).Label,
			HasJob:          strings.TrimSpace(jobDescription) != "",
			Result:          result,
			MaxFileSizeText: s.maxFileSizeText(),
		})
	}
}

type uploadedFile struct {
	filename string
	data     []byte
}

// readUpload reads the "file" part, enforcing the file size limit
func (s *Server) readUpload(r *http.Request) (*uploadedFile, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "a resume file is required in the 'file' field", err)
	}
	defer func() { _ = file.Close() }()

	var reader io.Reader = file
	if s.MaxFileSize > 0 {
		reader = io.LimitReader(file, s.MaxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read uploaded file", err)
	}
	if s.MaxFileSize > 0 && int64(len(data)) > s.MaxFileSize {
		return nil, errors.NewValidationError(errors.ErrCodeRequestTooLarge,
			"file is larger than the "+s.maxFileSizeText()+" limit", nil).
			WithContext("filename", header.Filename)
	}
	return &uploadedFile{filename: header.Filename, data: data}, nil
}

// runAnalysis critiques resumeText with the current critic and records the outcome
func (s *Server) runAnalysis(ctx context.Context, om *observability.ObservabilityManager, resumeText, jobDescription, industry string) (*types.AnalysisResult, string, error) {
	id := uuid.NewString()
	start := time.Now()
	s.counters.analyses.Add(1)

	result, signals, err := s.Critic().AnalyzeDetailed(resumeText, jobDescription, common.NormalizeIndustry(industry))
	outcome := observability.AnalysisOutcome{
		Source:   "http",
		Duration: time.Since(start),
		Err:      err,
	}
	if err != nil {
		s.counters.failures.Add(1)
		om.GetMetrics().RecordAnalysis(ctx, outcome)
		s.Logger.LogError(err, "Analysis failed", "analysis_id", id)
		return nil, id, err
	}

	outcome.Industry = result.Industry
	outcome.Score = result.OverallScore
	outcome.RedFlagKinds = signals.FlagNames()
	om.GetMetrics().RecordAnalysis(ctx, outcome)

	s.Logger.Info("Analysis completed",
		"analysis_id", id,
		"industry", result.Industry,
		"score", result.OverallScore,
		"has_job_description", strings.TrimSpace(jobDescription) != "",
		"duration_ms", outcome.Duration.Milliseconds())
	return result, id, nil
}

// formatLabel names the upload format for metrics, sniffing when extraction failed
func formatLabel(doc *extract.Document, u *uploadedFile) string {
	if doc != nil {
		return string(doc.Format)
	}
	if format, _, err := extract.Detect(u.data, u.filename); err == nil {
		return string(format)
	}
	return "unknown"
}

// formError classifies a multipart parsing failure
func formError(err error) *errors.AppError {
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
		return errors.NewValidationError(errors.ErrCodeRequestTooLarge, "upload exceeds the request size limit", err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, "expected a multipart/form-data upload", err)
}

// validationMessage reports the first failed field by its JSON name
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if stderrors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return "validation error: " + jsonFieldName(ve.Field()) + " - " + ve.Tag()
	}
	return "validation error: invalid request"
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func recordSpanError(span oteltrace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if appErr, ok := errors.As(err); ok {
		span.SetAttributes(
			attribute.String("error.type", string(appErr.Type)),
			attribute.String("error.code", appErr.Code),
		)
	}
}
