package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// UploadsTotal counts finished upload pipelines by asset kind and result.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masonry_uploads_total",
			Help: "Media uploads by kind and result.",
		},
		[]string{"kind", "result"},
	)

	UploadPollAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "masonry_upload_poll_attempts",
			Help:    "Job status polls needed until an upload was processed.",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 30, 60},
		},
		[]string{"kind"},
	)

	DocumentSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masonry_document_saves_total",
			Help: "Grid document saves by result.",
		},
		[]string{"result"},
	)

	DocumentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masonry_document_cache_lookups_total",
			Help: "Grid manifest cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	EditOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "masonry_edit_operations_total",
			Help: "Widget edit operations by name and result.",
		},
		[]string{"op", "result"},
	)
)

// Result labels.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
)

func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
