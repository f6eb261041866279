// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package middleware provides HTTP middleware for the status server.

Key Components:

  - Request ID: X-Request-ID propagation into the logging context
  - Prometheus Metrics: request count and latency by route pattern
  - Compression: gzip for clients that accept it

Middleware is written as func(http.HandlerFunc) http.HandlerFunc and adapted
to chi's r.Use in the api package:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Route patterns ("/recommendations/{user}") rather than raw paths label the
metrics, so user ids never become label values.
*/
package middleware
