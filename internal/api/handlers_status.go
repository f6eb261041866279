// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/models"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 500
)

// Status returns the summary of the last pipeline run in this process and
// the latest run recorded in the database, which survives restarts.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data := map[string]interface{}{
		"version": h.version,
		"uptime":  h.uptime(),
		"running": false,
	}
	if h.pipeline != nil {
		data["running"] = h.pipeline.Running()
		if states := h.pipeline.BreakerStates(); len(states) > 0 {
			data["sinks"] = states
		}
		if last := h.pipeline.LastSummary(); last != nil {
			data["last_run"] = last
		}
	}

	if h.db != nil {
		run, err := h.db.LatestRun(r.Context())
		switch {
		case err == nil:
			data["latest_recorded_run"] = run
		case !errors.Is(err, database.ErrNoRuns):
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to read latest run")
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata(r, start),
	})
}

// Runs returns recent run history, newest first.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := getIntParam(r, "limit", defaultRunsLimit, 1, maxRunsLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	runs, err := h.db.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to read run history", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     runs,
		Metadata: metadata(r, start),
	})
}
