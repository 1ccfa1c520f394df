package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	"resumecritic/internal/errors"
	"resumecritic/internal/extract"
	"resumecritic/internal/utils"
)

// healthHandler reports service identity, parser version and extractor health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthy := s.extractor.IsHealthy()

	response := map[string]any{
		"status":         "healthy",
		"service":        serviceName,
		"version":        s.Version,
		"parser_version": extract.ParserVersion,
		"industries":     len(s.Critic().Registry().Industries()),
		"extractor": map[string]any{
			"healthy":         healthy,
			"circuit_breaker": s.extractor.Stats(),
		},
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": serviceName,
		"version": s.Version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"server": map[string]any{
			"max_file_size_bytes": s.MaxFileSize,
			"max_file_size":       utils.FormatFileSize(s.MaxFileSize),
			"auth_enabled":        len(s.apiKeySet()) > 0,
		},
		"analyses": map[string]any{
			"total":   s.counters.analyses.Load(),
			"failed":  s.counters.failures.Load(),
			"uploads": s.counters.uploads.Load(),
		},
		"extractor": s.extractor.Stats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.BankWatcher != nil {
		response["bank_watcher"] = s.BankWatcher.Status()
	}
	if s.VaultWatcher != nil {
		response["vault_watcher"] = s.VaultWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}

// industriesHandler lists the registered industries
func (s *Server) industriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Critic().Industries())
}

// parseJSONRequest parses a JSON request body into v
func parseJSONRequest(r *http.Request, v any) *errors.AppError {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeRequestTooLarge,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to read request body", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}

	return nil
}

// statusForError maps application errors onto HTTP status codes
func statusForError(err error) int {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case errors.ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeNoTextExtracted, errors.ErrCodeExtractionFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeExtractorOverload:
		return http.StatusServiceUnavailable
	}

	switch appErr.Type {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeIO:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes err as a JSON error response with the mapped status
func writeAppError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if appErr, ok := errors.As(err); ok {
		writeErrorResponse(w, http.StatusText(status), appErr.Code, appErr.Message, status)
		return
	}
	writeErrorResponse(w, http.StatusText(status), "", "internal error", status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
