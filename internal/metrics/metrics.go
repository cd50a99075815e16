// Package metrics содержит prometheus-метрики сервиса рекомендаций.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendationRequests считает вызовы операций по сценарию и исходу.
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"flow", "outcome"}, // flow: stored, history, query, admin, featured
	)

	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_ranking_duration_seconds",
			Help:    "Duration of similarity ranking in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"backend"},
	)

	RankingCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_ranking_candidates",
			Help:    "Number of candidates scored per ranking",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"backend"},
	)

	// DegradedFeatures считает пропущенные необязательные шаги (фильтр категории, ответ чата, сессия).
	DegradedFeatures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_degraded_features_total",
			Help: "Total number of optional steps skipped because a dependency failed",
		},
		[]string{"feature"},
	)

	ProductCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_product_cache_lookups_total",
			Help: "Product card cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	// CircuitBreakerState: 0 = closed, 1 = half-open, 2 = open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommender_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	OutboxPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_outbox_events_total",
			Help: "Outbox events handled by the publisher",
		},
		[]string{"result"}, // published, retry, failed
	)
)

const (
	FeatureCategoryFilter  = "category_filter"
	FeatureChatReply       = "chat_reply"
	FeatureConversation    = "conversation"
	FeatureImage           = "image"
	FeatureProductCache    = "product_cache"
	FeaturePurchaseContext = "purchase_context"
)
