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
)

// RunsTable holds pipeline run history.
const RunsTable = "sar_runs"

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", q, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the CREATE TABLE statements. Timestamps are
// plain TIMESTAMP (UTC) so no ICU extension is needed.
func (db *DB) getTableCreationQueries() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id VARCHAR NOT NULL,
			user_id VARCHAR NOT NULL,
			item_id VARCHAR NOT NULL,
			item_rank INTEGER NOT NULL,
			score DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, user_id, item_id)
		)`, query.Ident(db.cfg.Table)),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			status VARCHAR NOT NULL,
			interactions BIGINT NOT NULL DEFAULT 0,
			users BIGINT NOT NULL DEFAULT 0,
			items BIGINT NOT NULL DEFAULT 0,
			recommendations BIGINT NOT NULL DEFAULT 0,
			injected BIGINT NOT NULL DEFAULT 0,
			error VARCHAR
		)`, query.Ident(RunsTable)),
	}
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (user_id)`,
			query.Ident("idx_"+db.cfg.Table+"_user"), query.Ident(db.cfg.Table)),
	}
	for _, q := range indexes {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", q, err)
		}
	}
	return nil
}
