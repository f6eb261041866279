// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/sar/internal/database/query"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/metrics"
)

// RecommendationRow is one stored recommendation.
type RecommendationRow struct {
	RunID     string    `json:"run_id"`
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Rank      int       `json:"rank"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertRecommendations writes rows in a single transaction. Rows replace
// existing rows with the same (run_id, user_id, item_id), so retrying a
// batch is idempotent. Either every row is written or none is.
func (db *DB) InsertRecommendations(ctx context.Context, rows []RecommendationRow) (err error) {
	if len(rows) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("INSERT", db.cfg.Table, time.Since(start), err)
	}()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	q := fmt.Sprintf(`INSERT OR REPLACE INTO %s (run_id, user_id, item_id, item_rank, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, query.Ident(db.cfg.Table))
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	now := time.Now().UTC()
	for i := range rows {
		r := &rows[i]
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err = stmt.ExecContext(ctx, r.RunID, r.UserID, r.ItemID, r.Rank, r.Score, created); err != nil {
			return fmt.Errorf("failed to insert recommendation %s/%s: %w", r.UserID, r.ItemID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recommendations: %w", err)
	}
	return nil
}

// latestRunClause selects the most recent successful run.
func latestRunClause() string {
	return fmt.Sprintf(`"run_id" = (SELECT id FROM %s WHERE status = '%s' ORDER BY finished_at DESC LIMIT 1)`,
		query.Ident(RunsTable), RunStatusSuccess)
}

// RecommendationsForUser returns a user's stored recommendations ordered by
// rank. An empty runID reads the latest successful run. limit <= 0 returns all.
func (db *DB) RecommendationsForUser(ctx context.Context, runID, userID string, limit int) ([]RecommendationRow, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder().AddEquals("user_id", userID)
	if runID != "" {
		wb.AddEquals("run_id", runID)
	} else {
		wb.AddClause(latestRunClause())
	}
	where, args := wb.BuildWithPrefix()

	q := fmt.Sprintf(`SELECT run_id, user_id, item_id, item_rank, score, created_at
		FROM %s %s ORDER BY item_rank`, query.Ident(db.cfg.Table), where)
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, db.cfg.Table, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []RecommendationRow
	for rows.Next() {
		var r RecommendationRow
		if err := rows.Scan(&r.RunID, &r.UserID, &r.ItemID, &r.Rank, &r.Score, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRecommendations returns the number of stored rows for runID.
func (db *DB) CountRecommendations(ctx context.Context, runID string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := query.NewWhereBuilder().AddEquals("run_id", runID).BuildWithPrefix()
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", query.Ident(db.cfg.Table), where)

	var n int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, q, args...).Scan(&n)
	metrics.RecordDBQuery("SELECT", db.cfg.Table, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count recommendations: %w", err)
	}
	return n, nil
}
