// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package api serves the status HTTP endpoints of `sar serve`.

Routes:

	GET /health                  overall status, uptime, last run
	GET /health/live             liveness probe, always 200
	GET /health/ready            readiness probe, 503 when a health check fails
	GET /status                  last pipeline run summary
	GET /runs?limit=N            run history from the sar_runs table
	GET /recommendations/{user}  stored recommendations (?run_id=, ?limit=)
	GET /items/{item}/similar    nearest items in the last fitted model (?limit=)
	GET /metrics                 Prometheus exposition

JSON responses use the models.APIResponse envelope and are encoded with
goccy/go-json. Every route passes through request id, panic recovery, Prometheus and CORS
middleware. /runs, /recommendations and /items are rate limited per client IP.
*/
package api
