// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/pipeline"
)

// PipelineRunner executes one pipeline run.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.RunSummary, error)
}

// PipelineService schedules pipeline runs under supervision.
//
// The first run starts immediately. With a positive interval the service keeps
// running on a ticker; with a zero interval it returns suture.ErrDoNotRestart
// after the single run. A failed run is logged; it never crashes the service.
type PipelineService struct {
	runner   PipelineRunner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewPipelineService creates a scheduler for runner.
func NewPipelineService(runner PipelineRunner, interval time.Duration) *PipelineService {
	return &PipelineService{
		runner:   runner,
		interval: interval,
		logger:   logging.WithComponent("pipeline-service"),
		name:     "pipeline-service",
	}
}

// Serve implements suture.Service.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.interval).
		Msg("pipeline service starting")

	s.runOnce(ctx)
	if s.interval <= 0 {
		s.logger.Info().Msg("no pipeline interval configured, not rescheduling")
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled pipeline run triggered")
			s.runOnce(ctx)
		}
	}
}

func (s *PipelineService) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	summary, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Warn().Msg("previous pipeline run still in progress, skipping")
	case err != nil:
		ev := s.logger.Warn().Err(err)
		if summary != nil {
			ev = ev.Str("run_id", summary.RunID)
		}
		ev.Msg("scheduled pipeline run failed")
	default:
		s.logger.Info().
			Str("run_id", summary.RunID).
			Int("recommendations", summary.Recommendations).
			Str("duration", summary.Duration).
			Msg("scheduled pipeline run complete")
	}
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}
