// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sar/internal/health"
	"github.com/tomtom215/sar/internal/models"
)

// Health reports database connectivity, uptime and the last run.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	dbConnected := h.db != nil && h.db.HealthCheck(r.Context()) == nil

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	hs := models.HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            h.uptime(),
	}
	if h.pipeline != nil {
		hs.PipelineRunning = h.pipeline.Running()
		if last := h.pipeline.LastSummary(); last != nil {
			ok := last.Success
			hs.LastRunID = last.RunID
			hs.LastRunSuccess = &ok
			hs.LastRunAt = last.FinishedAt
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     hs,
		Metadata: metadata(r, start),
	})
}

// HealthLive returns 200 while the process is alive.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": h.uptime(),
		},
		Metadata: metadata(r, time.Now()),
	})
}

// maxReportAge bounds how old a monitor report may be before HealthReady
// runs the checks itself.
const maxReportAge = time.Minute

// HealthReady returns 200 only when every health check passes, else 503.
// A recent report from the health monitor is served without re-checking.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report := h.readinessReport(r.Context())

	statusCode := http.StatusOK
	status := "ready"
	if !report.Healthy {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status:   status,
		Data:     report,
		Metadata: metadata(r, start),
	})
}

func (h *Handler) readinessReport(ctx context.Context) health.Report {
	if last := h.checker.Last(); last != nil && time.Since(last.CheckedAt) < maxReportAge {
		return *last
	}
	return h.checker.Check(ctx)
}
