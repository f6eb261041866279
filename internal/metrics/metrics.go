// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Model Metrics
	FitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sar_fit_duration_seconds",
			Help:    "Duration of SAR model fits in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	FitErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sar_fit_errors_total",
			Help: "Total number of failed model fits",
		},
	)

	ModelInteractions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_model_interactions",
			Help: "Interaction records used by the last fitted model",
		},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_model_users",
			Help: "Distinct users in the last fitted model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_model_items",
			Help: "Distinct items in the last fitted model",
		},
	)

	SimilarityNonzero = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_similarity_nonzero",
			Help: "Stored entries in the item-item similarity matrix",
		},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sar_recommend_duration_seconds",
			Help:    "Duration of batch recommendation in seconds",
			Buckets: []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	RecommendationsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sar_recommendations_total",
			Help: "Total number of recommendation rows generated",
		},
	)

	// Injection Metrics
	InjectRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_inject_rows_total",
			Help: "Recommendation rows written to sinks",
		},
		[]string{"sink", "outcome"}, // outcome: "success", "failure"
	)

	InjectBatchRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_inject_batch_retries_total",
			Help: "Batch write retries by sink",
		},
		[]string{"sink"},
	)

	InjectSuccessRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_inject_success_rate",
			Help: "Percentage of rows injected in the last run",
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

	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_pipeline_runs_total",
			Help: "Pipeline runs by status",
		},
		[]string{"status"}, // "success", "failure"
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sar_pipeline_duration_seconds",
			Help:    "End-to-end pipeline run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sar_pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	EvaluationScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sar_evaluation_score",
			Help: "Last offline evaluation score",
		},
		[]string{"metric", "k"},
	)

	HealthCheckStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sar_health_check_status",
			Help: "Health check result (1=healthy, 0=unhealthy)",
		},
		[]string{"check"},
	)

	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APICacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sar_api_cache_lookups_total",
			Help: "Recommendation response cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordFit records a model fit and, on success, the fitted sizes.
func RecordFit(duration time.Duration, interactions, users, items, similarityNNZ int, err error) {
	FitDuration.Observe(duration.Seconds())
	if err != nil {
		FitErrors.Inc()
		return
	}
	ModelInteractions.Set(float64(interactions))
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
	SimilarityNonzero.Set(float64(similarityNNZ))
}

// RecordRecommend records a batch recommendation call.
func RecordRecommend(duration time.Duration, rows int) {
	RecommendDuration.Observe(duration.Seconds())
	RecommendationsGenerated.Add(float64(rows))
}

// RecordInjectBatch records the outcome of one batch write to a sink.
func RecordInjectBatch(sink string, rows int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	InjectRows.WithLabelValues(sink, outcome).Add(float64(rows))
}

// RecordInjectRetry records a batch retry.
func RecordInjectRetry(sink string) {
	InjectBatchRetries.WithLabelValues(sink).Inc()
}

// RecordPipelineRun records a completed pipeline run.
func RecordPipelineRun(duration time.Duration, err error) {
	PipelineDuration.Observe(duration.Seconds())
	if err != nil {
		PipelineRuns.WithLabelValues("failure").Inc()
		return
	}
	PipelineRuns.WithLabelValues("success").Inc()
	PipelineLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordEvaluation stores evaluation scores keyed by metric name.
func RecordEvaluation(k int, scores map[string]float64) {
	cutoff := strconv.Itoa(k)
	for name, v := range scores {
		EvaluationScore.WithLabelValues(name, cutoff).Set(v)
	}
}

// RecordHealthCheck records a single health check result.
func RecordHealthCheck(check string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	HealthCheckStatus.WithLabelValues(check).Set(v)
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a response cache hit or miss
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	APICacheLookups.WithLabelValues(result).Inc()
}
