// Feedrank - Personalized Content Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the recommendation pipeline:
// - Recall strategy latency and yield
// - Merge and ranking stage latency
// - Circuit breaker state, transitions and per-call verdicts
// - Two-tier cache efficiency
// - Pipeline latency and fallback counts

var (
	// Pipeline Metrics
	PipelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_pipeline_requests_total",
			Help: "Total recommendation requests by result kind",
		},
		[]string{"result"}, // "ok", "cache", "fallback"
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_pipeline_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"scene"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_fallbacks_total",
			Help: "Total fallback activations by stage",
		},
		[]string{"stage"}, // "recall", "ranking", "pipeline"
	)

	// Recall Metrics
	RecallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_recall_duration_seconds",
			Help:    "Per-strategy recall latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy", "status"},
	)

	RecallCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_recall_candidates",
			Help:    "Candidates produced per strategy invocation",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"strategy"},
	)

	// Stage Metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_stage_duration_seconds",
			Help:    "Latency of individual pipeline stages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // "merge", "ranking", "rerank", "personalize"
	)

	// Circuit Breaker Metrics
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feedrank_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"command"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"command", "from", "to"},
	)

	BreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_breaker_requests_total",
			Help: "Circuit breaker call verdicts",
		},
		[]string{"command", "verdict"}, // "success", "failure", "timeout", "rejected"
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_cache_hits_total",
			Help: "Cache hits by tier",
		},
		[]string{"tier"}, // "local", "shared"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_cache_misses_total",
			Help: "Cache misses by tier",
		},
		[]string{"tier"}, // "local", "shared"
	)

	CachePromotions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedrank_cache_promotions_total",
			Help: "Shared-tier hits written back into the local tier",
		},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_cache_evictions_total",
			Help: "Local-tier evictions by cause",
		},
		[]string{"cause"}, // "expired", "capacity", "invalidated"
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_events_published_total",
			Help: "Behavior events published by status",
		},
		[]string{"status"}, // "ok", "error"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordAPIRequest records one API request with its status and duration.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
