// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/validation"
)

// normalize lower-cases enum-like fields so validation is case-insensitive.
func (c *Config) normalize() {
	c.Model.Similarity = strings.ToLower(strings.TrimSpace(c.Model.Similarity))
	c.Source.Format = strings.ToLower(strings.TrimSpace(c.Source.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate checks struct rules and cross-field constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateRedis(); err != nil {
		return err
	}
	if err := c.validateEvaluation(); err != nil {
		return err
	}
	if _, err := c.Model.RecommenderConfig(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSource() error {
	switch c.Source.Format {
	case FormatCSV, FormatParquet:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for %s sources (PROCESSED_DATA_PATH)", c.Source.Format)
		}
	case FormatDuckDB:
		if c.Source.Table == "" && c.Source.Query == "" {
			return errors.New("source.table or source.query is required for duckdb sources")
		}
		if c.Source.Table != "" && c.Source.Query != "" {
			return errors.New("source.table and source.query are mutually exclusive")
		}
	}
	if c.Source.Format == FormatCSV && c.Source.Path == "-" && c.Pipeline.Interval > 0 {
		return errors.New("source.path \"-\" reads stdin once and cannot be combined with pipeline.interval > 0")
	}
	if c.Model.EnableTimeDecay && c.Source.TimestampColumn == "" {
		return errors.New("source.timestamp_column is required when model.enable_time_decay is true")
	}
	return nil
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Redis.Addr); err != nil {
		return fmt.Errorf("redis.addr must be host:port: %w", err)
	}
	if c.Redis.KeyPrefix == "" {
		return errors.New("redis.key_prefix is required when redis is enabled")
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	if c.Evaluation.Enabled && strings.TrimSpace(c.Evaluation.Query) == "" {
		return errors.New("evaluation.query is required when evaluation is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
	return nil
}
