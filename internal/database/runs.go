// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/sar/internal/database/query"
	"github.com/tomtom215/sar/internal/metrics"
)

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// RunRecord is one row of pipeline run history.
type RunRecord struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitempty"`
	Status          string    `json:"status"`
	Interactions    int64     `json:"interactions"`
	Users           int64     `json:"users"`
	Items           int64     `json:"items"`
	Recommendations int64     `json:"recommendations"`
	Injected        int64     `json:"injected"`
	Error           string    `json:"error,omitempty"`
}

// RecordRun inserts or replaces the run with rec.ID.
func (db *DB) RecordRun(ctx context.Context, rec RunRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var finished sql.NullTime
	if !rec.FinishedAt.IsZero() {
		finished = sql.NullTime{Time: rec.FinishedAt.UTC(), Valid: true}
	}
	var errText sql.NullString
	if rec.Error != "" {
		errText = sql.NullString{String: rec.Error, Valid: true}
	}

	q := fmt.Sprintf(`INSERT OR REPLACE INTO %s
		(id, started_at, finished_at, status, interactions, users, items, recommendations, injected, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, query.Ident(RunsTable))

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, q,
		rec.ID, rec.StartedAt.UTC(), finished, rec.Status,
		rec.Interactions, rec.Users, rec.Items, rec.Recommendations, rec.Injected, errText)
	metrics.RecordDBQuery("INSERT", RunsTable, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rec.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`SELECT id, started_at, finished_at, status, interactions, users, items,
		recommendations, injected, error FROM %s ORDER BY started_at DESC LIMIT ?`, query.Ident(RunsTable))

	rows, err := db.QueryContext(ctx, RunsTable, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []RunRecord
	for rows.Next() {
		var (
			r        RunRecord
			finished sql.NullTime
			errText  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.Status, &r.Interactions, &r.Users,
			&r.Items, &r.Recommendations, &r.Injected, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		r.Error = errText.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestRun returns the most recently started run, or ErrNoRuns.
func (db *DB) LatestRun(ctx context.Context) (RunRecord, error) {
	runs, err := db.RecentRuns(ctx, 1)
	if err != nil {
		return RunRecord{}, err
	}
	if len(runs) == 0 {
		return RunRecord{}, ErrNoRuns
	}
	return runs[0], nil
}
