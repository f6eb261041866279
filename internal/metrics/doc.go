// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package metrics provides Prometheus instrumentation for the SAR pipeline.

All collectors are registered on the default registry through promauto and
exposed by the status server at /metrics:

	curl http://localhost:9090/metrics

# Available Metrics

Model:
  - sar_fit_duration_seconds: model fit time (histogram)
  - sar_fit_errors_total: failed fits (counter)
  - sar_model_interactions, sar_model_users, sar_model_items: fitted data size (gauges)
  - sar_similarity_nonzero: stored similarity entries (gauge)
  - sar_recommend_duration_seconds: batch recommend time (histogram)
  - sar_recommendations_total: generated rows (counter)

Injection:
  - sar_inject_rows_total: rows by sink and outcome (counter)
  - sar_inject_batch_retries_total: batch retries by sink (counter)
  - sar_inject_success_rate: last run success percentage (gauge)
  - circuit_breaker_*: breaker state, requests, transitions (by sink)

Database:
  - duckdb_query_duration_seconds, duckdb_query_errors_total

Pipeline and health:
  - sar_pipeline_runs_total, sar_pipeline_duration_seconds, sar_pipeline_last_success_timestamp
  - sar_evaluation_score: last offline evaluation by metric and cutoff
  - sar_health_check_status: 1 healthy, 0 unhealthy, by check
  - http_requests_total, http_request_duration_seconds: status server traffic

# Usage

	start := time.Now()
	err := model.Fit(records)
	metrics.RecordFit(time.Since(start), len(records), users, items, nnz, err)
*/
package metrics
