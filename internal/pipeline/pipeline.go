// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/inject"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/recommend"
	"github.com/tomtom215/sar/internal/recommend/evaluation"
	"github.com/tomtom215/sar/internal/source"
)

var (
	// ErrRunInProgress is returned when Run is called during another run.
	ErrRunInProgress = errors.New("pipeline: run already in progress")

	// ErrIncompleteInjection is returned when some rows were not injected.
	ErrIncompleteInjection = errors.New("pipeline: not all recommendations were injected")

	// ErrNoModel is returned by SimilarItems before the first successful fit.
	ErrNoModel = errors.New("pipeline: no model fitted yet")
)

// Store is the database surface the pipeline needs. *database.DB satisfies it.
type Store interface {
	source.InteractionQuerier
	evaluation.Querier
	RecordRun(ctx context.Context, rec database.RunRecord) error
	CountRecommendations(ctx context.Context, runID string) (int64, error)
}

// Injector writes recommendations. *inject.Injector satisfies it.
type Injector interface {
	Inject(ctx context.Context, runID string, recs []recommend.Recommendation) (inject.Result, error)
}

// RunSummary describes one finished run.
type RunSummary struct {
	RunID             string             `json:"run_id"`
	StartedAt         time.Time          `json:"started_at"`
	FinishedAt        time.Time          `json:"finished_at"`
	Duration          string             `json:"duration"`
	Loaded            int                `json:"loaded"`
	Interactions      int                `json:"interactions"`
	Users             int                `json:"users"`
	Items             int                `json:"items"`
	SimilarityNonzero int                `json:"similarity_nonzero"`
	Recommendations   int                `json:"recommendations"`
	Inject            inject.Result      `json:"inject"`
	Stored            int64              `json:"stored"`
	Evaluation        *evaluation.Report `json:"evaluation,omitempty"`
	Success           bool               `json:"success"`
	Error             string             `json:"error,omitempty"`

	recs []recommend.Recommendation
}

// Generated returns the recommendations produced by the run.
func (s *RunSummary) Generated() []recommend.Recommendation {
	return s.recs
}

// ItemNeighbors lists the items most similar to one item in the last
// fitted model.
type ItemNeighbors struct {
	RunID      string
	ItemID     string
	MeanWeight float64
	Similar    []recommend.ItemScore
}

// fittedModel is the model published by the latest successful fit.
type fittedModel struct {
	runID string
	model *recommend.SAR
	means map[string]float64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStdin sets the reader used by a csv source with path "-".
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) {
		p.loader.WithStdin(r)
	}
}

// Pipeline runs recommendation jobs.
type Pipeline struct {
	cfg      *config.Config
	store    Store
	loader   *source.Loader
	filter   *source.Filter
	injector Injector

	running atomic.Bool
	model   atomic.Pointer[fittedModel]
	mu      sync.RWMutex
	last    *RunSummary
}

// New creates a Pipeline. The model configuration and filter expression are
// checked here so a bad configuration fails before any data is read.
func New(cfg *config.Config, store Store, injector Injector, opts ...Option) (*Pipeline, error) {
	if _, err := cfg.Model.RecommenderConfig(); err != nil {
		return nil, fmt.Errorf("model config: %w", err)
	}
	if injector == nil {
		return nil, errors.New("pipeline: injector is required")
	}

	p := &Pipeline{
		cfg:      cfg,
		store:    store,
		loader:   source.NewLoader(store, cfg.Source),
		injector: injector,
	}
	if cfg.Source.Filter != "" {
		f, err := source.NewFilter(cfg.Source.Filter)
		if err != nil {
			return nil, err
		}
		p.filter = f
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// LastSummary returns the most recent finished run, or nil.
func (p *Pipeline) LastSummary() *RunSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// BreakerStates maps sink names to circuit breaker states, or returns nil
// when the injector does not track breakers.
func (p *Pipeline) BreakerStates() map[string]string {
	if r, ok := p.injector.(interface{ BreakerStates() map[string]string }); ok {
		return r.BreakerStates()
	}
	return nil
}

// SimilarItems returns up to n items most similar to itemID in the last
// fitted model. It returns ErrNoModel before the first fit.
func (p *Pipeline) SimilarItems(itemID string, n int) (*ItemNeighbors, error) {
	fm := p.model.Load()
	if fm == nil {
		return nil, ErrNoModel
	}
	similar, err := fm.model.SimilarItems(itemID, n)
	if err != nil {
		return nil, err
	}
	return &ItemNeighbors{
		RunID:      fm.runID,
		ItemID:     itemID,
		MeanWeight: fm.means[itemID],
		Similar:    similar,
	}, nil
}

// Running reports whether a run is executing.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Run executes one job. The summary is returned even when the run fails.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer p.running.Store(false)

	ctx = logging.ContextWithNewRunID(ctx)
	runID := logging.RunIDFromContext(ctx)
	log := logging.Ctx(ctx)

	summary := &RunSummary{RunID: runID, StartedAt: time.Now().UTC()}
	p.record(ctx, summary, database.RunStatusRunning, "")
	log.Info().Msg("Pipeline run started")

	err := p.execute(ctx, summary)

	summary.FinishedAt = time.Now().UTC()
	elapsed := summary.FinishedAt.Sub(summary.StartedAt)
	summary.Duration = elapsed.String()
	summary.Success = err == nil

	status := database.RunStatusSuccess
	if err != nil {
		status = database.RunStatusFailed
		summary.Error = err.Error()
		log.Error().Err(err).Dur("duration", elapsed).Msg("Pipeline run failed")
	} else {
		log.Info().
			Int("recommendations", summary.Recommendations).
			Int("users", summary.Users).
			Int("items", summary.Items).
			Dur("duration", elapsed).
			Msg("Pipeline run complete")
	}
	p.record(context.WithoutCancel(ctx), summary, status, summary.Error)
	metrics.RecordPipelineRun(elapsed, err)

	p.mu.Lock()
	p.last = summary
	p.mu.Unlock()

	return summary, err
}

func (p *Pipeline) execute(ctx context.Context, summary *RunSummary) error {
	log := logging.Ctx(ctx)

	records, err := p.loader.Load(ctx)
	if err != nil {
		return err
	}
	summary.Loaded = len(records)

	if p.filter != nil {
		if records, err = p.filter.Apply(records); err != nil {
			return err
		}
		log.Info().
			Str("filter", p.filter.String()).
			Int("loaded", summary.Loaded).
			Int("kept", len(records)).
			Msg("Filter applied")
	}
	summary.Interactions = len(records)

	model, err := p.fit(ctx, records, summary)
	if err != nil {
		return err
	}
	means, err := model.ItemMeans()
	if err != nil {
		return err
	}
	p.model.Store(&fittedModel{runID: summary.RunID, model: model, means: means})

	users := p.targetUsers(ctx, model)
	start := time.Now()
	recs, err := model.Recommend(users, p.cfg.Recommend.TopN, p.cfg.Recommend.ExcludeSeen)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	metrics.RecordRecommend(time.Since(start), len(recs))
	summary.recs = recs
	summary.Recommendations = len(recs)
	log.Info().
		Int("users", len(users)).
		Int("rows", len(recs)).
		Dur("duration", time.Since(start)).
		Msg("Recommendations generated")

	if p.cfg.Evaluation.Enabled {
		report, err := p.evaluate(ctx, model)
		if err != nil {
			log.Warn().Err(err).Msg("Evaluation failed")
		} else {
			summary.Evaluation = &report
		}
	}

	res, err := p.injector.Inject(ctx, summary.RunID, recs)
	summary.Inject = res
	if err != nil {
		return err
	}

	stored, err := p.store.CountRecommendations(ctx, summary.RunID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count stored recommendations")
	} else {
		summary.Stored = stored
		log.Info().Int64("stored", stored).Int("injected", res.Injected).Msg("Recommendations stored")
	}
	if !res.Success() {
		return fmt.Errorf("%w: %d/%d rows (%.2f%%)", ErrIncompleteInjection, res.Injected, res.Total, res.SuccessRate())
	}
	return nil
}

// fit trains a new model on records.
func (p *Pipeline) fit(ctx context.Context, records []recommend.Interaction, summary *RunSummary) (*recommend.SAR, error) {
	cfg, err := p.cfg.Model.RecommenderConfig()
	if err != nil {
		return nil, err
	}
	model, err := recommend.NewSAR(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = model.Fit(records)
	if err != nil {
		metrics.RecordFit(time.Since(start), len(records), 0, 0, 0, err)
		return nil, fmt.Errorf("fit: %w", err)
	}

	snap := model.Snapshot()
	summary.Users = snap.Users.Len()
	summary.Items = snap.Items.Len()
	summary.SimilarityNonzero = snap.Similarity.NNZ()
	metrics.RecordFit(time.Since(start), len(records), summary.Users, summary.Items, summary.SimilarityNonzero, nil)

	logging.Ctx(ctx).Info().
		Str("similarity", string(cfg.Similarity)).
		Bool("time_decay", snap.Decayed).
		Int("users", summary.Users).
		Int("items", summary.Items).
		Int("similarity_nonzero", summary.SimilarityNonzero).
		Dur("duration", time.Since(start)).
		Msg("Model fitted")
	return model, nil
}

// targetUsers returns the configured users known to the model, or every
// trained user when none are configured.
func (p *Pipeline) targetUsers(ctx context.Context, model *recommend.SAR) []string {
	snap := model.Snapshot()
	if len(p.cfg.Recommend.Users) == 0 {
		return snap.Users.IDs()
	}

	users := make([]string, 0, len(p.cfg.Recommend.Users))
	var unknown []string
	for _, id := range p.cfg.Recommend.Users {
		if _, ok := snap.Users.Position(id); ok {
			users = append(users, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		logging.Ctx(ctx).Warn().Strs("users", unknown).Msg("Skipping users without interactions")
	}
	return users
}

// evaluate scores the model against the held-out query.
func (p *Pipeline) evaluate(ctx context.Context, model *recommend.SAR) (evaluation.Report, error) {
	ec := p.cfg.Evaluation
	opts := evaluation.Options{
		K:            ec.K,
		UserColumn:   ec.UserColumn,
		ItemColumn:   ec.ItemColumn,
		RatingColumn: ec.RatingColumn,
	}

	truth, err := evaluation.LoadTruth(ctx, p.store, ec.Query, opts)
	if err != nil {
		return evaluation.Report{}, err
	}

	snap := model.Snapshot()
	seen := make(map[string]struct{})
	var users []string
	for _, t := range truth {
		if _, dup := seen[t.UserID]; dup {
			continue
		}
		seen[t.UserID] = struct{}{}
		if _, ok := snap.Users.Position(t.UserID); ok {
			users = append(users, t.UserID)
		}
	}

	preds, err := model.Recommend(users, ec.K, p.cfg.Recommend.ExcludeSeen)
	if err != nil {
		return evaluation.Report{}, err
	}
	report, err := evaluation.Evaluate(truth, preds, opts)
	if err != nil {
		return evaluation.Report{}, err
	}

	metrics.RecordEvaluation(ec.K, report.Metrics())
	logging.Ctx(ctx).Info().
		Int("k", report.K).
		Int("users", report.Users).
		Float64("precision", report.Precision).
		Float64("recall", report.Recall).
		Float64("ndcg", report.NDCG).
		Float64("map", report.MAP).
		Msg("Evaluation complete")
	return report, nil
}

// record writes run history. Failures are logged only.
func (p *Pipeline) record(ctx context.Context, s *RunSummary, status, errMsg string) {
	rec := database.RunRecord{
		ID:              s.RunID,
		StartedAt:       s.StartedAt,
		FinishedAt:      s.FinishedAt,
		Status:          status,
		Interactions:    int64(s.Interactions),
		Users:           int64(s.Users),
		Items:           int64(s.Items),
		Recommendations: int64(s.Recommendations),
		Injected:        int64(s.Inject.Injected),
		Error:           errMsg,
	}
	if err := p.store.RecordRun(ctx, rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("status", status).Msg("Failed to record run")
	}
}
