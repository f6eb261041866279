// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sar/internal/cache"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/models"
	"github.com/tomtom215/sar/internal/pipeline"
	"github.com/tomtom215/sar/internal/recommend"
)

const (
	maxRecommendationsLimit = 1000
	defaultSimilarLimit     = 10
)

// recommendationsKey identifies a cached response. LatestRun changes after
// every pipeline run in this process, so "latest" lookups miss once a new run
// has written its rows.
type recommendationsKey struct {
	User      string `json:"user"`
	Limit     int    `json:"limit"`
	RunID     string `json:"run_id"`
	LatestRun string `json:"latest_run"`
}

// Recommendations returns a user's stored recommendations from the latest
// successful run, or from ?run_id=. Responses are cached for a minute.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID := chi.URLParam(r, "user")
	if userID == "" {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "user is required", nil)
		return
	}
	limit, err := getIntParam(r, "limit", 0, 0, maxRecommendationsLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	runID := r.URL.Query().Get("run_id")

	key := cache.GenerateKey("recommendations", recommendationsKey{
		User:      userID,
		Limit:     limit,
		RunID:     runID,
		LatestRun: h.latestRunID(),
	})
	if cached, ok := h.cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		respondJSON(w, http.StatusOK, &models.APIResponse{
			Status:   "success",
			Data:     cached,
			Metadata: metadata(r, start),
		})
		return
	}
	metrics.RecordCacheLookup(false)

	rows, err := h.db.RecommendationsForUser(r.Context(), runID, userID, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to read recommendations", err)
		return
	}
	if len(rows) == 0 {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "no recommendations for user", nil)
		return
	}

	out := models.UserRecommendations{
		UserID:          userID,
		RunID:           rows[0].RunID,
		Recommendations: make([]models.RecommendationItem, len(rows)),
	}
	for i, row := range rows {
		out.Recommendations[i] = models.RecommendationItem{ItemID: row.ItemID, Rank: row.Rank, Score: row.Score}
	}
	h.cache.Set(key, out)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     out,
		Metadata: metadata(r, start),
	})
}

func (h *Handler) latestRunID() string {
	if h.pipeline == nil {
		return ""
	}
	if s := h.pipeline.LastSummary(); s != nil {
		return s.RunID
	}
	return ""
}

// SimilarItems returns the items most similar to {item} in the model fitted
// by the last run in this process.
func (h *Handler) SimilarItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	itemID := chi.URLParam(r, "item")
	limit, err := getIntParam(r, "limit", defaultSimilarLimit, 1, maxRecommendationsLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if h.pipeline == nil {
		respondError(w, r, http.StatusServiceUnavailable, "NO_MODEL", "no model available", nil)
		return
	}

	neighbors, err := h.pipeline.SimilarItems(itemID, limit)
	switch {
	case errors.Is(err, pipeline.ErrNoModel):
		respondError(w, r, http.StatusServiceUnavailable, "NO_MODEL", "no model fitted yet", nil)
		return
	case errors.Is(err, recommend.ErrUnknownItem):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "unknown item", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "MODEL_ERROR", "Failed to look up similar items", err)
		return
	}

	out := models.ItemSimilarity{
		ItemID:     neighbors.ItemID,
		RunID:      neighbors.RunID,
		MeanWeight: neighbors.MeanWeight,
		Similar:    make([]models.SimilarItem, len(neighbors.Similar)),
	}
	for i, s := range neighbors.Similar {
		out.Similar[i] = models.SimilarItem{ItemID: s.ItemID, Score: s.Score}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     out,
		Metadata: metadata(r, start),
	})
}
