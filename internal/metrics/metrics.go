// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package metrics exposes Prometheus instrumentation for the recommender
// client, the feedback session and the local HTTP surface.
//
// All collectors register with the default registry through promauto and are
// served by `reelpick serve` at /metrics.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the recorder helpers.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeRejected  = "rejected"
	OutcomeCancelled = "cancelled"
)

var (
	// Recommender Backend Metrics
	RecommenderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Total number of requests sent to the recommendation backend",
		},
		[]string{"endpoint", "outcome"},
	)

	RecommenderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_request_duration_seconds",
			Help:    "Recommendation backend request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// Session Metrics
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Total number of feedback submissions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	SessionLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_loads_total",
			Help: "Total number of candidate loads by outcome",
		},
		[]string{"outcome"}, // success, failure, superseded
	)

	SessionNoticesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_notices_total",
			Help: "Total number of user-facing notices raised",
		},
		[]string{"kind"},
	)

	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "session_state",
			Help: "1 for the state the feedback session is currently in, 0 otherwise",
		},
		[]string{"state"},
	)

	PopularItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popular_feed_items",
			Help: "Number of entries in the most recent popular movies listing",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
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
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRecommenderRequest records one backend round trip.
func RecordRecommenderRequest(endpoint string, duration time.Duration, err error) {
	RecommenderRequestsTotal.WithLabelValues(endpoint, outcomeOf(err)).Inc()
	RecommenderRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordFeedback records a feedback submission.
func RecordFeedback(action string, err error) {
	FeedbackTotal.WithLabelValues(action, outcomeOf(err)).Inc()
}

// RecordSessionLoad records how a candidate load ended.
func RecordSessionLoad(outcome string) {
	SessionLoadsTotal.WithLabelValues(outcome).Inc()
}

// RecordNotice records a user-facing notice.
func RecordNotice(kind string) {
	SessionNoticesTotal.WithLabelValues(kind).Inc()
}

// SetSessionState marks current as the active state out of all.
func SetSessionState(current string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		SessionState.WithLabelValues(s).Set(v)
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled
	default:
		return OutcomeFailure
	}
}
