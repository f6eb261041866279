// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package inject

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/recommend"
)

// ErrNoSinks is returned by New without sinks.
var ErrNoSinks = errors.New("inject: no sinks configured")

// Result summarizes one injection.
type Result struct {
	Total         int `json:"total"`
	Injected      int `json:"injected"`
	Failed        int `json:"failed"`
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
}

// SuccessRate returns the injected share in percent. An empty injection is
// 100% successful.
func (r Result) SuccessRate() float64 {
	if r.Total == 0 {
		return 100
	}
	return float64(r.Injected) / float64(r.Total) * 100
}

// Success reports whether every row was injected.
func (r Result) Success() bool {
	return r.Injected == r.Total
}

// Injector writes recommendation batches to its sinks.
type Injector struct {
	cfg     config.InjectConfig
	sinks   []*breakerSink
	limiter *rate.Limiter
	now     func() time.Time
}

// New creates an Injector over sinks.
func New(cfg config.InjectConfig, sinks ...Sink) (*Injector, error) {
	if len(sinks) == 0 {
		return nil, ErrNoSinks
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("inject: batch size must be positive, got %d", cfg.BatchSize)
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}

	threshold := uint32(1)
	if cfg.BreakerFailureThreshold > 1 {
		threshold = uint32(cfg.BreakerFailureThreshold)
	}

	inj := &Injector{cfg: cfg, now: time.Now}
	for _, s := range sinks {
		inj.sinks = append(inj.sinks, newBreakerSink(s, threshold, cfg.BreakerTimeout))
	}
	if cfg.BatchesPerSecond > 0 {
		burst := int(math.Ceil(cfg.BatchesPerSecond))
		inj.limiter = rate.NewLimiter(rate.Limit(cfg.BatchesPerSecond), burst)
	}
	return inj, nil
}

// SinkNames lists the configured sinks in order.
func (inj *Injector) SinkNames() []string {
	names := make([]string, len(inj.sinks))
	for i, s := range inj.sinks {
		names[i] = s.sink.Name()
	}
	return names
}

// BreakerStates maps sink names to circuit breaker states.
func (inj *Injector) BreakerStates() map[string]string {
	states := make(map[string]string, len(inj.sinks))
	for _, s := range inj.sinks {
		states[s.sink.Name()] = s.State()
	}
	return states
}

// Rows converts grouped recommendations to rows, numbering ranks from 1
// within each user's consecutive run.
func Rows(runID string, recs []recommend.Recommendation, createdAt time.Time) []database.RecommendationRow {
	rows := make([]database.RecommendationRow, len(recs))
	rank := 0
	for i, r := range recs {
		if i == 0 || recs[i-1].UserID != r.UserID {
			rank = 0
		}
		rank++
		rows[i] = database.RecommendationRow{
			RunID:     runID,
			UserID:    r.UserID,
			ItemID:    r.ItemID,
			Rank:      rank,
			Score:     r.Score,
			CreatedAt: createdAt,
		}
	}
	return rows
}

// Inject writes recs in batches. A batch that still fails after all retries
// is counted as failed and the run continues. The returned error is non-nil
// only when ctx ends; the Result then counts unwritten rows as failed.
func (inj *Injector) Inject(ctx context.Context, runID string, recs []recommend.Recommendation) (Result, error) {
	rows := Rows(runID, recs, inj.now().UTC())
	return inj.InjectRows(ctx, rows)
}

// InjectRows is Inject for prepared rows.
func (inj *Injector) InjectRows(ctx context.Context, rows []database.RecommendationRow) (Result, error) {
	log := logging.Ctx(ctx)
	res := Result{Total: len(rows)}
	start := time.Now()

	log.Info().
		Int("rows", len(rows)).
		Int("batch_size", inj.cfg.BatchSize).
		Strs("sinks", inj.SinkNames()).
		Msg("Injecting recommendations")

	var ctxErr error
	for offset := 0; offset < len(rows); offset += inj.cfg.BatchSize {
		end := offset + inj.cfg.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[offset:end]
		res.Batches++

		if inj.limiter != nil {
			if err := inj.limiter.Wait(ctx); err != nil {
				ctxErr = err
			}
		}
		if ctxErr == nil {
			ctxErr = ctx.Err()
		}
		if ctxErr != nil {
			res.Failed += len(rows) - offset
			res.FailedBatches++
			break
		}

		if err := inj.writeBatch(ctx, batch); err != nil {
			res.Failed += len(batch)
			res.FailedBatches++
			log.Error().Err(err).
				Int("batch", res.Batches).
				Int("rows", len(batch)).
				Msg("Batch failed after retries")
			continue
		}
		res.Injected += len(batch)
		log.Debug().Int("batch", res.Batches).Int("rows", len(batch)).Msg("Batch injected")
	}

	metrics.InjectSuccessRate.Set(res.SuccessRate())
	log.Info().
		Int("injected", res.Injected).
		Int("total", res.Total).
		Int("failed_batches", res.FailedBatches).
		Float64("success_rate", res.SuccessRate()).
		Dur("duration", time.Since(start)).
		Msgf("Injection complete: %d/%d (%.2f%%)", res.Injected, res.Total, res.SuccessRate())

	if ctxErr != nil {
		return res, fmt.Errorf("injection interrupted: %w", ctxErr)
	}
	return res, nil
}

// writeBatch writes one batch to every sink concurrently. Sinks fail
// independently; the joined error names each failed sink.
func (inj *Injector) writeBatch(ctx context.Context, batch []database.RecommendationRow) error {
	var g errgroup.Group
	errs := make([]error, len(inj.sinks))

	for i, s := range inj.sinks {
		g.Go(func() error {
			err := inj.retryWithBackoff(ctx, s, batch)
			metrics.RecordInjectBatch(s.sink.Name(), len(batch), err)
			if err != nil {
				errs[i] = fmt.Errorf("sink %s: %w", s.sink.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// retryWithBackoff attempts a sink write up to MaxRetries times, doubling the
// delay after each failure. Transaction conflicts retry at the base delay.
// An open circuit or canceled context stops early.
func (inj *Injector) retryWithBackoff(ctx context.Context, s *breakerSink, batch []database.RecommendationRow) error {
	var err error
	delay := inj.cfg.RetryDelay

	for attempt := 0; attempt < inj.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = inj.attempt(ctx, s, batch)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCircuitOpen) {
			return err
		}

		if attempt < inj.cfg.MaxRetries-1 {
			conflict := database.IsTransactionConflict(err)
			wait := delay
			if conflict {
				wait = inj.cfg.RetryDelay
			}
			metrics.RecordInjectRetry(s.sink.Name())
			logging.Ctx(ctx).Warn().Err(err).
				Str("sink", s.sink.Name()).
				Int("attempt", attempt+1).
				Int("max_attempts", inj.cfg.MaxRetries).
				Bool("transaction_conflict", conflict).
				Dur("delay", wait).
				Msg("Retry attempt")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
			if !conflict {
				delay *= 2
			}
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}

// attempt runs one write under the transaction timeout.
func (inj *Injector) attempt(ctx context.Context, s *breakerSink, batch []database.RecommendationRow) error {
	if inj.cfg.TransactionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inj.cfg.TransactionTimeout)
		defer cancel()
	}
	return s.write(ctx, batch)
}
