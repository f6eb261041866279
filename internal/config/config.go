// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/sar/internal/recommend"
)

// Config holds all SAR settings.
type Config struct {
	Model      ModelConfig      `koanf:"model"`
	Source     SourceConfig     `koanf:"source"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Database   DatabaseConfig   `koanf:"database"`
	Inject     InjectConfig     `koanf:"inject"`
	Redis      RedisConfig      `koanf:"redis"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Health     HealthConfig     `koanf:"health"`
	Server     ServerConfig     `koanf:"server"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ModelConfig configures the SAR recommender.
type ModelConfig struct {
	Similarity           string  `koanf:"similarity" validate:"oneof=jaccard lift"`
	TimeDecayCoefficient float64 `koanf:"time_decay_coefficient" validate:"gt=0"`
	// ReferenceTime is the decay reference in Unix seconds. Unset uses the
	// latest timestamp in the training data.
	ReferenceTime   *float64 `koanf:"reference_time"`
	EnableTimeDecay bool     `koanf:"enable_time_decay"`
}

// RecommenderConfig converts the section to the model's own configuration.
func (m ModelConfig) RecommenderConfig() (recommend.Config, error) {
	mode, err := recommend.ParseSimilarityMode(m.Similarity)
	if err != nil {
		return recommend.Config{}, err
	}
	cfg := recommend.DefaultConfig()
	cfg.Similarity = mode
	cfg.TimeDecayCoefficient = m.TimeDecayCoefficient
	cfg.EnableTimeDecay = m.EnableTimeDecay
	if m.ReferenceTime != nil {
		t := *m.ReferenceTime
		cfg.ReferenceTime = &t
	}
	return cfg, cfg.Validate()
}

// Source formats.
const (
	FormatDuckDB  = "duckdb"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// SourceConfig describes where interactions are read from.
type SourceConfig struct {
	Format string `koanf:"format" validate:"oneof=duckdb csv parquet"`
	// Path is the parquet or CSV file (globs allowed by DuckDB).
	Path string `koanf:"path"`
	// Table or Query select interactions when Format is duckdb.
	Table string `koanf:"table" validate:"omitempty,sqlident"`
	Query string `koanf:"query"`

	UserColumn      string `koanf:"user_column" validate:"required,sqlident"`
	ItemColumn      string `koanf:"item_column" validate:"required,sqlident"`
	RatingColumn    string `koanf:"rating_column" validate:"omitempty,sqlident"`
	TimestampColumn string `koanf:"timestamp_column" validate:"omitempty,sqlident"`

	// Filter is an optional CEL expression over user, item, rating and timestamp.
	Filter  string        `koanf:"filter"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0s"`
}

// RecommendConfig controls batch recommendation.
type RecommendConfig struct {
	TopN        int  `koanf:"top_n" validate:"min=1"`
	ExcludeSeen bool `koanf:"exclude_seen"`
	// Users limits output to these users. Empty means every trained user.
	Users []string `koanf:"users"`
}

// DatabaseConfig configures the DuckDB connection.
type DatabaseConfig struct {
	Path                   string `koanf:"path" validate:"required"`
	MaxMemory              string `koanf:"max_memory" validate:"required,memsize"`
	Threads                int    `koanf:"threads" validate:"gte=0"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	// Table receives recommendation rows.
	Table string `koanf:"table" validate:"required,sqlident"`
}

// InjectConfig controls how recommendations are written to sinks.
type InjectConfig struct {
	BatchSize          int           `koanf:"batch_size" validate:"min=1"`
	MaxRetries         int           `koanf:"max_retries" validate:"min=1"`
	RetryDelay         time.Duration `koanf:"retry_delay" validate:"gte=0s"`
	TransactionTimeout time.Duration `koanf:"transaction_timeout" validate:"gt=0s"`
	// BatchesPerSecond throttles writes; 0 is unlimited.
	BatchesPerSecond        float64       `koanf:"batches_per_second" validate:"gte=0"`
	BreakerFailureThreshold int           `koanf:"breaker_failure_threshold" validate:"min=1"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout" validate:"gt=0s"`
}

// RedisConfig configures the optional Redis sink.
type RedisConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Addr      string        `koanf:"addr"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db" validate:"gte=0"`
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl" validate:"gte=0s"`
}

// EvaluationConfig configures offline evaluation against held-out data.
type EvaluationConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Query        string `koanf:"query"`
	K            int    `koanf:"k" validate:"min=1"`
	UserColumn   string `koanf:"user_column" validate:"required,sqlident"`
	ItemColumn   string `koanf:"item_column" validate:"required,sqlident"`
	RatingColumn string `koanf:"rating_column" validate:"omitempty,sqlident"`
}

// HealthConfig configures the readiness checks.
type HealthConfig struct {
	// MemoryLimit caps resident memory, e.g. "4096M". A bare number is megabytes.
	MemoryLimit   string        `koanf:"memory_limit" validate:"required,memsize"`
	CheckInterval time.Duration `koanf:"check_interval" validate:"gt=0s"`
}

// ServerConfig configures the status HTTP server.
type ServerConfig struct {
	Enabled bool          `koanf:"enabled"`
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0s"`

	// CORSOrigins lists allowed browser origins. Empty allows none.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per client IP per RateLimitWindow on the data routes.
	// 0 disables rate limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0s"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// PipelineConfig controls scheduling.
type PipelineConfig struct {
	// Interval between runs under `sar serve`; 0 runs once.
	Interval time.Duration `koanf:"interval" validate:"gte=0s"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// String summarizes the effective configuration for startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("similarity=%s decay=%t coef=%g source=%s top_n=%d db=%s redis=%t",
		c.Model.Similarity, c.Model.EnableTimeDecay, c.Model.TimeDecayCoefficient,
		c.Source.Format, c.Recommend.TopN, c.Database.Path, c.Redis.Enabled)
}
