// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package inject

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/recommend"
)

// fakeSink fails its first failFirst writes, or every write when failAlways.
// err replaces the default failure.
type fakeSink struct {
	name       string
	failFirst  int
	failAlways bool
	err        error

	mu    sync.Mutex
	calls int
	rows  []database.RecommendationRow
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(_ context.Context, rows []database.RecommendationRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAlways || f.calls <= f.failFirst {
		if f.err != nil {
			return f.err
		}
		return fmt.Errorf("%s unavailable", f.name)
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeSink) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testInjectConfig() config.InjectConfig {
	return config.InjectConfig{
		BatchSize:               2,
		MaxRetries:              3,
		RetryDelay:              time.Millisecond,
		TransactionTimeout:      time.Second,
		BreakerFailureThreshold: 10,
		BreakerTimeout:          time.Hour,
	}
}

func makeRecs(users, perUser int) []recommend.Recommendation {
	var recs []recommend.Recommendation
	for u := 0; u < users; u++ {
		for i := 0; i < perUser; i++ {
			recs = append(recs, recommend.Recommendation{
				UserID: fmt.Sprintf("u%d", u),
				ItemID: fmt.Sprintf("i%d", i),
				Score:  float64(perUser - i),
			})
		}
	}
	return recs
}

func TestNewRequiresSinks(t *testing.T) {
	if _, err := New(testInjectConfig()); !errors.Is(err, ErrNoSinks) {
		t.Errorf("New() error = %v, want ErrNoSinks", err)
	}

	cfg := testInjectConfig()
	cfg.BatchSize = 0
	if _, err := New(cfg, &fakeSink{name: "a"}); err == nil {
		t.Error("New() with zero batch size error = nil, want error")
	}
}

func TestRows(t *testing.T) {
	recs := []recommend.Recommendation{
		{UserID: "a", ItemID: "x", Score: 3},
		{UserID: "a", ItemID: "y", Score: 2},
		{UserID: "b", ItemID: "x", Score: 5},
		{UserID: "a", ItemID: "z", Score: 1},
	}
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := Rows("run-1", recs, at)
	wantRanks := []int{1, 2, 1, 1}
	for i, row := range rows {
		if row.Rank != wantRanks[i] {
			t.Errorf("rows[%d].Rank = %d, want %d", i, row.Rank, wantRanks[i])
		}
		if row.RunID != "run-1" || !row.CreatedAt.Equal(at) {
			t.Errorf("rows[%d] = %+v", i, row)
		}
	}
}

func TestResultSuccessRate(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want float64
		ok   bool
	}{
		{"empty", Result{}, 100, true},
		{"all", Result{Total: 4, Injected: 4}, 100, true},
		{"half", Result{Total: 4, Injected: 2, Failed: 2}, 50, false},
		{"none", Result{Total: 3, Failed: 3}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.res.SuccessRate(); got != tt.want {
				t.Errorf("SuccessRate() = %v, want %v", got, tt.want)
			}
			if got := tt.res.Success(); got != tt.ok {
				t.Errorf("Success() = %v, want %v", got, tt.ok)
			}
		})
	}
}

func TestInjectAllBatches(t *testing.T) {
	a, b := &fakeSink{name: "a"}, &fakeSink{name: "b"}
	inj, err := New(testInjectConfig(), a, b)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := inj.Inject(context.Background(), "run-1", makeRecs(2, 3))
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	want := Result{Total: 6, Injected: 6, Batches: 3}
	if res != want {
		t.Errorf("Inject() = %+v, want %+v", res, want)
	}
	for _, s := range []*fakeSink{a, b} {
		if len(s.rows) != 6 {
			t.Errorf("sink %s received %d rows, want 6", s.name, len(s.rows))
		}
		if s.rows[3].UserID != "u1" || s.rows[3].Rank != 1 {
			t.Errorf("sink %s rows[3] = %+v, want u1 rank 1", s.name, s.rows[3])
		}
	}
}

func TestInjectRetriesTransientFailure(t *testing.T) {
	s := &fakeSink{name: "flaky", failFirst: 2}
	inj, err := New(testInjectConfig(), s)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := inj.Inject(context.Background(), "run-1", makeRecs(1, 2))
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if !res.Success() {
		t.Errorf("Inject() = %+v, want success", res)
	}
	if got := s.Calls(); got != 3 {
		t.Errorf("sink calls = %d, want 3", got)
	}
}

func TestInjectPartialFailure(t *testing.T) {
	good, bad := &fakeSink{name: "good"}, &fakeSink{name: "bad", failAlways: true}
	inj, err := New(testInjectConfig(), good, bad)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := inj.Inject(context.Background(), "run-1", makeRecs(1, 4))
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}

	want := Result{Total: 4, Injected: 0, Failed: 4, Batches: 2, FailedBatches: 2}
	if res != want {
		t.Errorf("Inject() = %+v, want %+v", res, want)
	}
	if len(good.rows) != 4 {
		t.Errorf("good sink received %d rows, want 4", len(good.rows))
	}
	if got := bad.Calls(); got != 6 {
		t.Errorf("bad sink calls = %d, want 6", got)
	}
}

func TestInjectCircuitOpens(t *testing.T) {
	cfg := testInjectConfig()
	cfg.BreakerFailureThreshold = 2
	s := &fakeSink{name: "down", failAlways: true}

	inj, err := New(cfg, s)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := inj.Inject(context.Background(), "run-1", makeRecs(1, 6))
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if res.Injected != 0 || res.FailedBatches != 3 {
		t.Errorf("Inject() = %+v, want 3 failed batches", res)
	}
	if got := s.Calls(); got != 2 {
		t.Errorf("sink calls = %d, want 2 before the circuit opened", got)
	}
	if got := inj.BreakerStates()["down"]; got != "open" {
		t.Errorf("breaker state = %q, want open", got)
	}
}

func TestInjectTransactionConflictKeepsBreakerClosed(t *testing.T) {
	conflict := errors.New("TransactionContext Error: Failed to commit: Transaction conflict: cannot update a table that has been altered")

	tests := []struct {
		name        string
		err         error
		wantSuccess bool
		wantCalls   int
		wantState   string
	}{
		{"transaction conflict", conflict, true, 3, "closed"},
		{"sink failure", errors.New("disk full"), false, 2, "open"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testInjectConfig()
			cfg.BreakerFailureThreshold = 2
			s := &fakeSink{name: "duckdb", failFirst: 2, err: tt.err}

			inj, err := New(cfg, s)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			res, err := inj.Inject(context.Background(), "run-1", makeRecs(1, 2))
			if err != nil {
				t.Fatalf("Inject() error = %v", err)
			}
			if res.Success() != tt.wantSuccess {
				t.Errorf("Inject() = %+v, want success %v", res, tt.wantSuccess)
			}
			if got := s.Calls(); got != tt.wantCalls {
				t.Errorf("sink calls = %d, want %d", got, tt.wantCalls)
			}
			if got := inj.BreakerStates()["duckdb"]; got != tt.wantState {
				t.Errorf("breaker state = %q, want %q", got, tt.wantState)
			}
		})
	}
}

func TestInjectCanceled(t *testing.T) {
	s := &fakeSink{name: "a"}
	inj, err := New(testInjectConfig(), s)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := inj.Inject(ctx, "run-1", makeRecs(1, 3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Inject() error = %v, want context.Canceled", err)
	}
	if res.Failed != 3 || res.Injected != 0 {
		t.Errorf("Inject() = %+v, want all rows failed", res)
	}
	if s.Calls() != 0 {
		t.Errorf("sink calls = %d, want 0", s.Calls())
	}
}

func TestInjectRateLimited(t *testing.T) {
	cfg := testInjectConfig()
	cfg.BatchesPerSecond = 1000
	s := &fakeSink{name: "a"}

	inj, err := New(cfg, s)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := inj.Inject(context.Background(), "run-1", makeRecs(3, 3))
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if !res.Success() || res.Batches != 5 {
		t.Errorf("Inject() = %+v, want 5 successful batches", res)
	}
}

func TestInjectEmpty(t *testing.T) {
	inj, err := New(testInjectConfig(), &fakeSink{name: "a"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := inj.Inject(context.Background(), "run-1", nil)
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if res != (Result{}) || !res.Success() {
		t.Errorf("Inject(nil) = %+v, want empty success", res)
	}
}
