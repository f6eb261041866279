// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sar/config.yaml",
	"/etc/sar/config.yml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Similarity:           "jaccard",
			TimeDecayCoefficient: 30,
			EnableTimeDecay:      true,
		},
		Source: SourceConfig{
			Format:          FormatParquet,
			UserColumn:      "UserId",
			ItemColumn:      "ItemId",
			RatingColumn:    "Rating",
			TimestampColumn: "Timestamp",
			Timeout:         5 * time.Minute,
		},
		Recommend: RecommendConfig{
			TopN:        10,
			ExcludeSeen: true,
		},
		Database: DatabaseConfig{
			Path:                   "/data/sar.duckdb",
			MaxMemory:              "2GB",
			Threads:                0,
			PreserveInsertionOrder: true,
			Table:                  "recommendations",
		},
		Inject: InjectConfig{
			BatchSize:               1000,
			MaxRetries:              3,
			RetryDelay:              time.Second,
			TransactionTimeout:      300 * time.Second,
			BatchesPerSecond:        0,
			BreakerFailureThreshold: 5,
			BreakerTimeout:          30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			KeyPrefix: "sar:recs:",
		},
		Evaluation: EvaluationConfig{
			Enabled:    false,
			K:          10,
			UserColumn: "UserId",
			ItemColumn: "ItemId",
		},
		Health: HealthConfig{
			MemoryLimit:   "4096M",
			CheckInterval: 30 * time.Second,
		},
		Server: ServerConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    9090,
			Timeout: 30 * time.Second,

			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load searches for a config file and loads configuration.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration using path as the YAML file. An empty path
// falls back to CONFIG_PATH and DefaultConfigPaths. An explicit path that
// does not exist is an error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are keys that accept comma-separated strings from env vars.
var sliceConfigPaths = []string{
	"recommend.users",
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	// Model
	"similarity_type":        "model.similarity",
	"time_decay_coefficient": "model.time_decay_coefficient",
	"time_now":               "model.reference_time",
	"enable_time_decay":      "model.enable_time_decay",

	// Source
	"source_format":       "source.format",
	"processed_data_path": "source.path",
	"source_table":        "source.table",
	"source_query":        "source.query",
	"source_filter":       "source.filter",
	"source_timeout":      "source.timeout",
	"user_column":         "source.user_column",
	"item_column":         "source.item_column",
	"rating_column":       "source.rating_column",
	"timestamp_column":    "source.timestamp_column",

	// Recommend
	"top_n":           "recommend.top_n",
	"exclude_seen":    "recommend.exclude_seen",
	"recommend_users": "recommend.users",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"output_table":      "database.table",

	// Inject
	"batch_size":                "inject.batch_size",
	"max_retries":               "inject.max_retries",
	"retry_delay":               "inject.retry_delay",
	"transaction_timeout":       "inject.transaction_timeout",
	"batches_per_second":        "inject.batches_per_second",
	"breaker_failure_threshold": "inject.breaker_failure_threshold",
	"breaker_timeout":           "inject.breaker_timeout",

	// Redis
	"redis_enabled":    "redis.enabled",
	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"redis_key_prefix": "redis.key_prefix",
	"redis_ttl":        "redis.ttl",

	// Evaluation
	"evaluation_enabled": "evaluation.enabled",
	"evaluation_query":   "evaluation.query",
	"evaluation_k":       "evaluation.k",

	// Health
	"memory_limit":          "health.memory_limit",
	"health_check_interval": "health.check_interval",

	// Server
	"http_enabled": "server.enabled",
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",

	"http_cors_origins":        "server.cors_origins",
	"http_rate_limit_requests": "server.rate_limit_requests",
	"http_rate_limit_window":   "server.rate_limit_window",

	// Pipeline
	"pipeline_interval": "pipeline.interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// secondsKeys accept bare integers as seconds.
var secondsKeys = map[string]bool{
	"inject.transaction_timeout": true,
	"inject.retry_delay":         true,
	"inject.breaker_timeout":     true,
	"source.timeout":             true,
	"redis.ttl":                  true,
	"health.check_interval":      true,
	"server.timeout":             true,
	"server.rate_limit_window":   true,
	"pipeline.interval":          true,
}

// envTransformFunc maps an environment variable onto a config key. Unknown
// variables return an empty key and are ignored.
func envTransformFunc(key, value string) (string, interface{}) {
	path, ok := envMappings[strings.ToLower(key)]
	if !ok {
		return "", nil
	}
	if secondsKeys[path] {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return path, (time.Duration(n) * time.Second).String()
		}
	}
	return path, value
}
