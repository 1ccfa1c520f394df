package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumecritic/internal/config"
	"resumecritic/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetObservabilityConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Observability = config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "resumecritic",
		Tracing:     config.TracingConfig{Enabled: true, SampleRate: 0.5},
		Metrics:     config.MetricsConfig{Enabled: true},
		Prometheus:  config.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	}

	obs := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, 0.5, obs.SampleRate)
	assert.Equal(t, 15*time.Second, obs.CollectionInterval)
	assert.True(t, obs.Prometheus.Enabled)
	assert.Empty(t, obs.Prometheus.Port)

	fallback := GetObservabilityConfig(nil, "dev")
	assert.Equal(t, "resumecritic", fallback.ServiceName)
	assert.Equal(t, "9090", fallback.Prometheus.Port)
}

func TestDisabledManagerIsNoop(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: false})
	require.NoError(t, err)

	m := om.GetMetrics()
	m.RecordAnalysis(context.Background(), AnalysisOutcome{Source: "cli", Score: 50})
	m.RecordExtraction(context.Background(), "pdf", nil)
	m.RecordRateLimitHit(context.Background(), "ip")
	m.RecordBankReload(context.Background(), true)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	om.HTTPMiddleware()(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	endpoint, handler := om.PrometheusHandler()
	assert.Empty(t, endpoint)
	assert.Nil(t, handler)
	assert.NoError(t, om.Shutdown(context.Background()))

	var nilMetrics *Metrics
	nilMetrics.RecordBankReload(context.Background(), false)
}

func TestPrometheusExportsCustomMetrics(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{
		ServiceName:        "resumecritic",
		ServiceVersion:     "test",
		Enabled:            true,
		MetricsEnabled:     true,
		CollectionInterval: time.Second,
		Prometheus:         PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	ctx := context.Background()
	m := om.GetMetrics()
	m.RecordAnalysis(ctx, AnalysisOutcome{
		Source:       "http",
		Industry:     "technology",
		Score:        72,
		RedFlagKinds: []string{"tone"},
		Duration:     3 * time.Millisecond,
	})
	m.RecordAnalysis(ctx, AnalysisOutcome{
		Source: "http",
		Err:    errors.NewValidationError(errors.ErrCodeEmptyResume, "empty", nil),
	})
	m.RecordExtraction(ctx, "pdf", fmt.Errorf("boom"))
	m.RecordRateLimitHit(ctx, "api_key")
	m.RecordBankReload(ctx, true)

	endpoint, handler := om.PrometheusHandler()
	require.Equal(t, "/metrics", endpoint)
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, name := range []string{
		"resumecritic_analyses_total",
		"resumecritic_analysis_duration_seconds",
		"resumecritic_score",
		"resumecritic_red_flags_total",
		"resumecritic_extractions_total",
		"resumecritic_extraction_errors_total",
		"resumecritic_rate_limit_hits_total",
		"resumecritic_bank_reloads_total",
	} {
		assert.True(t, strings.Contains(text, name), "missing metric %s", name)
	}
	assert.Contains(t, text, `error_code="EMPTY_RESUME"`)
	assert.Contains(t, text, `error_code="UNKNOWN"`)
}

func TestTracerWithoutProvider(t *testing.T) {
	om, err := NewObservabilityManager(ObservabilityConfig{Enabled: true, ServiceName: "resumecritic"})
	require.NoError(t, err)

	_, span := om.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
}
