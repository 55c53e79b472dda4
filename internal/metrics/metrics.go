// Package metrics provides Prometheus metrics for dochub.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"dochub/internal/llm"
	"dochub/internal/rag"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AsksTotal counts answered questions by outcome.
	AsksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dochub",
			Name:      "asks_total",
			Help:      "Total number of asks by outcome",
		},
		[]string{"outcome"},
	)

	// AskDuration measures the full ask pipeline, including retries.
	AskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dochub",
			Name:      "ask_duration_seconds",
			Help:      "Duration of asks in seconds",
			Buckets:   []float64{0.05, 0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
		},
		[]string{"outcome"},
	)

	// GenerationAttemptsTotal counts calls to the generative model by result.
	GenerationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dochub",
			Name:      "generation_attempts_total",
			Help:      "Total number of generation calls by result",
		},
		[]string{"result"},
	)

	// DocumentsUploadedTotal counts accepted uploads by document type.
	DocumentsUploadedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dochub",
			Name:      "documents_uploaded_total",
			Help:      "Total number of accepted document uploads",
		},
		[]string{"type"},
	)

	// HTTPRequestsTotal counts HTTP requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dochub",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// Generation attempt results.
const (
	ResultOK          = "ok"
	ResultRateLimited = "rate_limited"
	ResultAuth        = "auth"
	ResultError       = "error"
)

// RecordAsk records a finished ask.
func RecordAsk(outcome string, duration time.Duration) {
	AsksTotal.WithLabelValues(outcome).Inc()
	AskDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordGenerationAttempt records one generation call.
func RecordGenerationAttempt(result string) {
	GenerationAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordUpload records an accepted upload.
func RecordUpload(docType string) {
	DocumentsUploadedTotal.WithLabelValues(docType).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(method, route string, status int) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// AttemptResult classifies a generation error for the attempts counter.
func AttemptResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case llm.IsRateLimited(err):
		return ResultRateLimited
	case errors.Is(err, llm.ErrUnauthorized):
		return ResultAuth
	default:
		return ResultError
	}
}

// Observer feeds engine measurements into the package metrics.
type Observer struct{}

// AskCompleted implements rag.Observer.
func (Observer) AskCompleted(outcome rag.Outcome, elapsed time.Duration) {
	RecordAsk(string(outcome), elapsed)
}

// GenerationAttempt implements rag.Observer.
func (Observer) GenerationAttempt(err error) {
	RecordGenerationAttempt(AttemptResult(err))
}

var _ rag.Observer = Observer{}
