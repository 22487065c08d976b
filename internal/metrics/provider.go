package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "smartshopper"

// Provider and core-path Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Text generation attempts by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_request_duration_seconds",
			Help:      "Text generation attempt duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	// CascadeOutcomeTotal counts which stage answered a chat turn:
	// a provider name, "fallback" or "apology".
	CascadeOutcomeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_outcome_total",
			Help:      "Chat responses by answering stage",
		},
		[]string{"stage"},
	)

	ImageEmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_embedding_requests_total",
			Help:      "Image and text embedding requests by provider and outcome",
		},
		[]string{"provider", "input", "status"},
	)

	ImageEmbeddingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_embedding_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"provider", "input"},
	)

	VisionAnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_analysis_total",
			Help:      "Vision analysis requests by outcome",
		},
		[]string{"status"},
	)

	VisualCandidatesScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "visual_candidates_scanned",
			Help:      "Candidates compared per visual search",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
		},
	)

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by namespace and result",
		},
		[]string{"namespace", "result"}, // "hit" / "miss" / "error"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers provider and cache metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(CascadeOutcomeTotal)
	prometheus.MustRegister(ImageEmbeddingRequestsTotal)
	prometheus.MustRegister(ImageEmbeddingDuration)
	prometheus.MustRegister(VisionAnalysisTotal)
	prometheus.MustRegister(VisualCandidatesScanned)
	prometheus.MustRegister(CacheRequestsTotal)
	providerMetricsRegistered = true
}
