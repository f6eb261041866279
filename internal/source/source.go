// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/database"
	"github.com/tomtom215/sar/internal/database/query"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/recommend"
)

// StdinPath selects reading CSV from the Loader's stdin.
const StdinPath = "-"

// ErrUnsupportedFormat is returned for an unknown source format.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// InteractionQuerier reads interactions from a FROM item. *database.DB satisfies it.
type InteractionQuerier interface {
	QueryInteractions(ctx context.Context, from string, cols database.InteractionColumns) ([]recommend.Interaction, error)
}

// Loader reads interactions as configured.
type Loader struct {
	db    InteractionQuerier
	cfg   config.SourceConfig
	stdin io.Reader
}

// NewLoader creates a Loader. db may be nil when the source is stdin.
func NewLoader(db InteractionQuerier, cfg config.SourceConfig) *Loader {
	return &Loader{db: db, cfg: cfg, stdin: os.Stdin}
}

// WithStdin replaces the reader used for StdinPath.
func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r
	return l
}

// Columns returns the configured column names.
func (l *Loader) Columns() database.InteractionColumns {
	return database.InteractionColumns{
		User:      l.cfg.UserColumn,
		Item:      l.cfg.ItemColumn,
		Rating:    l.cfg.RatingColumn,
		Timestamp: l.cfg.TimestampColumn,
	}
}

// FromClause builds the DuckDB FROM item for cfg.
func FromClause(cfg config.SourceConfig) (string, error) {
	switch cfg.Format {
	case config.FormatParquet:
		return query.ReadParquet(cfg.Path), nil
	case config.FormatCSV:
		return query.ReadCSV(cfg.Path), nil
	case config.FormatDuckDB:
		if cfg.Query != "" {
			return query.Subquery(cfg.Query), nil
		}
		return query.Table(cfg.Table), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, cfg.Format)
	}
}

// describe names the source for log lines.
func (l *Loader) describe() string {
	switch {
	case l.cfg.Format == config.FormatDuckDB && l.cfg.Query != "":
		return "query"
	case l.cfg.Format == config.FormatDuckDB:
		return l.cfg.Table
	default:
		return l.cfg.Path
	}
}

// Load reads every interaction from the source within cfg.Timeout.
func (l *Loader) Load(ctx context.Context) ([]recommend.Interaction, error) {
	log := logging.Ctx(ctx)
	start := time.Now()

	log.Info().
		Str("format", l.cfg.Format).
		Str("source", l.describe()).
		Msg("Loading interactions")

	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	var (
		records []recommend.Interaction
		err     error
	)
	if l.cfg.Format == config.FormatCSV && l.cfg.Path == StdinPath {
		records, err = ReadCSV(l.stdin, l.Columns())
	} else {
		if l.db == nil {
			return nil, errors.New("source: no database for query-backed source")
		}
		var from string
		if from, err = FromClause(l.cfg); err != nil {
			return nil, err
		}
		records, err = l.db.QueryInteractions(ctx, from, l.Columns())
	}
	if err != nil {
		log.Error().Err(err).Str("source", l.describe()).Msg("Error loading data")
		return nil, fmt.Errorf("load interactions from %s: %w", l.describe(), err)
	}

	log.Info().
		Int("rows", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Successfully loaded interactions")
	return records, nil
}
