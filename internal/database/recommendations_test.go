// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"errors"
	"testing"
	"time"
)

func sampleRows(runID string) []RecommendationRow {
	return []RecommendationRow{
		{RunID: runID, UserID: "u1", ItemID: "i3", Rank: 1, Score: 1},
		{RunID: runID, UserID: "u1", ItemID: "i4", Rank: 2, Score: 0.5},
		{RunID: runID, UserID: "u2", ItemID: "i1", Rank: 1, Score: 1},
	}
}

func TestInsertRecommendations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.InsertRecommendations(ctx, nil); err != nil {
		t.Fatalf("InsertRecommendations(nil) error = %v", err)
	}
	if err := db.InsertRecommendations(ctx, sampleRows("run-1")); err != nil {
		t.Fatalf("InsertRecommendations() error = %v", err)
	}
	// Retrying the same batch replaces rather than duplicates.
	if err := db.InsertRecommendations(ctx, sampleRows("run-1")); err != nil {
		t.Fatalf("InsertRecommendations() retry error = %v", err)
	}

	n, err := db.CountRecommendations(ctx, "run-1")
	if err != nil {
		t.Fatalf("CountRecommendations() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountRecommendations() = %d, want 3", n)
	}

	got, err := db.RecommendationsForUser(ctx, "run-1", "u1", 0)
	if err != nil {
		t.Fatalf("RecommendationsForUser() error = %v", err)
	}
	if len(got) != 2 || got[0].ItemID != "i3" || got[1].ItemID != "i4" {
		t.Fatalf("RecommendationsForUser() = %+v, want i3, i4", got)
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	limited, err := db.RecommendationsForUser(ctx, "run-1", "u1", 1)
	if err != nil {
		t.Fatalf("RecommendationsForUser(limit 1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("len = %d, want 1", len(limited))
	}
}

func TestInsertRecommendationsCanceled(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := db.InsertRecommendations(ctx, sampleRows("run-x")); err == nil {
		t.Fatal("InsertRecommendations() with canceled context error = nil")
	}
	n, err := db.CountRecommendations(context.Background(), "run-x")
	if err != nil {
		t.Fatalf("CountRecommendations() error = %v", err)
	}
	if n != 0 {
		t.Errorf("rows after failed insert = %d, want 0", n)
	}
}

func TestRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.LatestRun(ctx); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("LatestRun() on empty history error = %v, want ErrNoRuns", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	old := RunRecord{ID: "run-1", StartedAt: base, FinishedAt: base.Add(time.Minute), Status: RunStatusSuccess, Users: 2}
	failed := RunRecord{ID: "run-2", StartedAt: base.Add(time.Hour), FinishedAt: base.Add(time.Hour + time.Minute),
		Status: RunStatusFailed, Error: "source unavailable"}

	for _, r := range []RunRecord{old, failed} {
		if err := db.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun(%s) error = %v", r.ID, err)
		}
	}

	latest, err := db.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() error = %v", err)
	}
	if latest.ID != "run-2" || latest.Status != RunStatusFailed || latest.Error != "source unavailable" {
		t.Errorf("LatestRun() = %+v, want failed run-2", latest)
	}

	// Replacing a run updates it in place.
	old.Recommendations = 3
	if err := db.RecordRun(ctx, old); err != nil {
		t.Fatalf("RecordRun() replace error = %v", err)
	}
	runs, err := db.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() len = %d, want 2", len(runs))
	}
	if runs[1].Recommendations != 3 {
		t.Errorf("replaced run recommendations = %d, want 3", runs[1].Recommendations)
	}

	// Reads without a run ID use the latest successful run.
	if err := db.InsertRecommendations(ctx, sampleRows("run-1")); err != nil {
		t.Fatalf("InsertRecommendations() error = %v", err)
	}
	if err := db.InsertRecommendations(ctx, []RecommendationRow{{RunID: "run-2", UserID: "u1", ItemID: "zz", Rank: 1, Score: 1}}); err != nil {
		t.Fatalf("InsertRecommendations() error = %v", err)
	}
	got, err := db.RecommendationsForUser(ctx, "", "u1", 0)
	if err != nil {
		t.Fatalf("RecommendationsForUser() error = %v", err)
	}
	if len(got) != 2 || got[0].RunID != "run-1" {
		t.Errorf("RecommendationsForUser(latest) = %+v, want rows from run-1", got)
	}
}
