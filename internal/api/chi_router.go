// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sar/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires handlers to routes.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
}

// NewRouter creates a router for h with default CORS and rate limiting.
func NewRouter(h *Handler) *Router {
	return &Router{handler: h, middleware: NewChiMiddleware(nil)}
}

// WithMiddleware replaces the CORS and rate limiting settings.
func (router *Router) WithMiddleware(cfg *ChiMiddlewareConfig) *Router {
	router.middleware = NewChiMiddleware(cfg)
	return router
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(router.middleware.CORS())

	r.Route("/health", func(r chi.Router) {
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Get("/status", router.handler.Status)

	r.Group(func(r chi.Router) {
		r.Use(router.middleware.RateLimit())

		r.Get("/runs", router.handler.Runs)
		r.With(chiMiddleware(middleware.Compression)).
			Get("/recommendations/{user}", router.handler.Recommendations)
		r.Get("/items/{item}/similar", router.handler.SimilarItems)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
