// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"context"
	"time"

	"github.com/tomtom215/sar/internal/cache"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/health"
	"github.com/tomtom215/sar/internal/models"
	"github.com/tomtom215/sar/internal/pipeline"
)

// Store is the read side of the database. *database.DB satisfies it.
type Store interface {
	HealthCheck(ctx context.Context) error
	RecentRuns(ctx context.Context, limit int) ([]database.RunRecord, error)
	LatestRun(ctx context.Context) (database.RunRecord, error)
	RecommendationsForUser(ctx context.Context, runID, userID string, limit int) ([]database.RecommendationRow, error)
}

// HealthChecker runs readiness checks. *health.Checker satisfies it.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
	Last() *health.Report
}

// StatusProvider exposes pipeline state. *pipeline.Pipeline satisfies it.
type StatusProvider interface {
	LastSummary() *pipeline.RunSummary
	Running() bool
	BreakerStates() map[string]string
	SimilarItems(itemID string, n int) (*pipeline.ItemNeighbors, error)
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_health.go: /health, /health/live, /health/ready
//   - handlers_status.go: /status, /runs
//   - handlers_recommend.go: /recommendations/{user}, /items/{item}/similar
type Handler struct {
	db        Store
	checker   HealthChecker
	pipeline  StatusProvider
	version   string
	startTime time.Time
	cache     *cache.LRU[models.UserRecommendations]
}

const (
	responseCacheSize = 4096
	responseCacheTTL  = time.Minute
)

// NewHandler creates a handler. pipeline may be nil when no pipeline runs in
// this process.
func NewHandler(db Store, checker HealthChecker, pipeline StatusProvider, version string) *Handler {
	return &Handler{
		db:        db,
		checker:   checker,
		pipeline:  pipeline,
		version:   version,
		startTime: time.Now(),
		cache:     cache.NewLRU[models.UserRecommendations](responseCacheSize, responseCacheTTL),
	}
}

// uptime returns seconds since the handler was created.
func (h *Handler) uptime() float64 {
	return time.Since(h.startTime).Seconds()
}
