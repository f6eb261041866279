// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package inject

import (
	"context"

	"github.com/tomtom215/sar/internal/database"
)

// Sink is a destination for recommendation rows. Write must be safe to repeat
// with the same rows.
type Sink interface {
	Name() string
	Write(ctx context.Context, rows []database.RecommendationRow) error
}

// RecommendationWriter persists rows. *database.DB satisfies it.
type RecommendationWriter interface {
	InsertRecommendations(ctx context.Context, rows []database.RecommendationRow) error
}

// DuckDBSink writes rows to the recommendations table.
type DuckDBSink struct {
	db RecommendationWriter
}

// NewDuckDBSink creates a sink over db.
func NewDuckDBSink(db RecommendationWriter) *DuckDBSink {
	return &DuckDBSink{db: db}
}

// Name implements Sink.
func (s *DuckDBSink) Name() string { return "duckdb" }

// Write implements Sink.
func (s *DuckDBSink) Write(ctx context.Context, rows []database.RecommendationRow) error {
	return s.db.InsertRecommendations(ctx, rows)
}
