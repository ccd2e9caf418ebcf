// MoodTune - Mood Inference and Music Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodtune

// Package metrics defines the Prometheus instruments exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Inference Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_predictions_total",
			Help: "Total number of mood predictions by outcome",
		},
		[]string{"outcome"}, // "label", "no_face", "decode_error", "classification_error"
	)

	PredictionLabels = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_prediction_labels_total",
			Help: "Total number of predictions per emitted label",
		},
		[]string{"label"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mood_prediction_duration_seconds",
			Help:    "Duration of the decode, detect and classify pipeline",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Recommendation Metrics
	RecommendCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	RecommendFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Total number of resolutions served from fallback tracks",
		},
	)

	RecommendCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_cache_entries",
			Help: "Current number of cached mood track lists",
		},
	)

	// Catalog Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of catalog search requests",
		},
		[]string{"status"}, // "ok", "error"
	)

	CatalogRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog search requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Chat Metrics
	ChatMessagesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_appended_total",
			Help: "Total number of chat messages stored",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of persistence failures",
		},
		[]string{"store", "operation"},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPrediction records a prediction outcome. label is only used for
// the "label" outcome.
func RecordPrediction(outcome, label string, duration time.Duration) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeLabel && label != "" {
		PredictionLabels.WithLabelValues(label).Inc()
	}
	PredictionDuration.Observe(duration.Seconds())
}

// Prediction outcomes.
const (
	OutcomeLabel               = "label"
	OutcomeNoFace              = "no_face"
	OutcomeDecodeError         = "decode_error"
	OutcomeClassificationError = "classification_error"
)

// RecordCatalogRequest records one catalog search.
func RecordCatalogRequest(duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CatalogRequestsTotal.WithLabelValues(status).Inc()
	CatalogRequestDuration.Observe(duration.Seconds())
}

// RecordStoreError counts a failed persistence operation.
func RecordStoreError(store, operation string) {
	StoreErrors.WithLabelValues(store, operation).Inc()
}
