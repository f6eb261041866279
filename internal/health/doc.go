// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package health checks that the service can do its job.
//
// Two checks run:
//   - database: SELECT 1 against DuckDB
//   - memory: process resident memory below health.memory_limit
//
// The process is healthy only when both pass. `sar healthcheck` maps the
// result to exit code 0 or 1, and /health/ready to 200 or 503. Under
// `sar serve` a Monitor re-runs the checks every health.check_interval so
// the sar_health_check_status gauge stays current.
package health
