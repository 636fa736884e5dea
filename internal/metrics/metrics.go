package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vscript_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vscript_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vscript_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vscript_generations_total",
			Help: "Total number of generation requests by outcome.",
		},
		[]string{"outcome"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vscript_llm_requests_total",
			Help: "Total number of language model calls.",
		},
		[]string{"stage", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vscript_llm_request_duration_seconds",
			Help:    "Language model call duration in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)

	TranscriptFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vscript_transcript_fetch_total",
			Help: "Total number of transcript fetches.",
		},
		[]string{"platform", "status"},
	)

	QuotaRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vscript_quota_rejections_total",
			Help: "Total number of generations rejected by the monthly quota.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		GenerationsTotal,
		LLMRequestsTotal,
		LLMRequestDuration,
		TranscriptFetchTotal,
		QuotaRejectionsTotal,
	)
}
