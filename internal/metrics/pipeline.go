package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	PipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpflow",
			Name:      "pipeline_requests_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"operation", "status"},
	)

	PipelineRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfpflow",
			Name:      "pipeline_run_duration_seconds",
			Help:      "Full pipeline run duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	InferenceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpflow",
			Name:      "inference_requests_total",
			Help:      "Total number of inference capability requests",
		},
		[]string{"capability", "model", "status"},
	)

	InferenceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rfpflow",
			Name:      "inference_request_duration_seconds",
			Help:      "Inference request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"capability", "model"},
	)

	InferenceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpflow",
			Name:      "inference_errors_total",
			Help:      "Total inference errors",
		},
		[]string{"capability", "model", "error_type"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rfpflow",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineRequestsTotal)
	prometheus.MustRegister(PipelineRunDuration)
	prometheus.MustRegister(InferenceRequestsTotal)
	prometheus.MustRegister(InferenceRequestDuration)
	prometheus.MustRegister(InferenceErrorsTotal)
	prometheus.MustRegister(ResultCacheTotal)
	pipelineMetricsRegistered = true
}
