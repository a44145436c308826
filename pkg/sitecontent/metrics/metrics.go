// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TranslationCalls counts provider calls by outcome: success, error,
	// rejected (identity or empty result), throttled, open (breaker open).
	TranslationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecontent_translation_calls_total",
			Help: "Translation provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	TranslationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecontent_translation_duration_seconds",
			Help:    "Translation provider call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// UntranslatedFields counts field/language pairs no provider could fill.
	UntranslatedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecontent_untranslated_fields_total",
			Help: "Field/language pairs left untranslated",
		},
		[]string{"language"},
	)

	RecordOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecontent_record_operations_total",
			Help: "Record operations by kind, operation and result",
		},
		[]string{"kind", "op", "result"},
	)

	UploadedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecontent_uploaded_bytes_total",
			Help: "Bytes written to the blob store by asset kind",
		},
		[]string{"asset"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecontent_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecontent_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
