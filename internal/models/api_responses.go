// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//   - "ready" / "not_ready": readiness probe outcome
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user_id": "u1", "recommendations": [...]},
//	  "metadata": {"timestamp": "2026-01-10T12:00:00Z", "query_time_ms": 3}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "NOT_FOUND", "message": "no recommendations for user"},
//	  "metadata": {"timestamp": "2026-01-10T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status            string    `json:"status"`
	Version           string    `json:"version"`
	DatabaseConnected bool      `json:"database_connected"`
	PipelineRunning   bool      `json:"pipeline_running"`
	LastRunID         string    `json:"last_run_id,omitempty"`
	LastRunSuccess    *bool     `json:"last_run_success,omitempty"`
	LastRunAt         time.Time `json:"last_run_at,omitempty"`
	Uptime            float64   `json:"uptime"`
}

// UserRecommendations is the payload of GET /recommendations/{user}.
type UserRecommendations struct {
	UserID          string               `json:"user_id"`
	RunID           string               `json:"run_id"`
	Recommendations []RecommendationItem `json:"recommendations"`
}

// RecommendationItem is one ranked item for a user.
type RecommendationItem struct {
	ItemID string  `json:"item_id"`
	Rank   int     `json:"rank"`
	Score  float64 `json:"score"`
}

// ItemSimilarity is the payload of GET /items/{item}/similar.
type ItemSimilarity struct {
	ItemID     string        `json:"item_id"`
	RunID      string        `json:"run_id"`
	MeanWeight float64       `json:"mean_weight"`
	Similar    []SimilarItem `json:"similar"`
}

// SimilarItem is one neighbor of an item.
type SimilarItem struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}
