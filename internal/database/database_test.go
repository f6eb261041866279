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

	"github.com/tomtom215/sar/internal/config"
)

// testDBSemaphore serializes DuckDB tests. Concurrent CGO-heavy connections
// hang under CI resource pressure, so each test holds the slot until cleanup.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:                   ":memory:",
		MaxMemory:              "1GB",
		Threads:                2,
		PreserveInsertionOrder: true,
		Table:                  "recommendations",
	}

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := New(cfg)
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func mustExec(t *testing.T, db *DB, q string) {
	t.Helper()
	if _, err := db.Conn().ExecContext(context.Background(), q); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

func TestNewCreatesSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}

	for _, table := range []string{"recommendations", RunsTable} {
		var n int
		err := db.Conn().QueryRowContext(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?", table).Scan(&n)
		if err != nil {
			t.Fatalf("query information_schema: %v", err)
		}
		if n != 1 {
			t.Errorf("table %s count = %d, want 1", table, n)
		}
	}
	if db.RecommendationsTable() != "recommendations" {
		t.Errorf("RecommendationsTable() = %q", db.RecommendationsTable())
	}
}

func TestIsTransactionConflict(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("TransactionContext Error: Transaction conflict: cannot update"), true},
		{errors.New("Constraint Error: duplicate key"), false},
	}
	for _, tt := range tests {
		if got := IsTransactionConflict(tt.err); got != tt.want {
			t.Errorf("IsTransactionConflict(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
