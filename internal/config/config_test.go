// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/sar/internal/recommend"
)

// isolate clears every mapped environment variable and moves into an empty
// directory so no config file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for key := range envMappings {
		name := strings.ToUpper(key)
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv(ConfigPathEnvVar, "")
	os.Unsetenv(ConfigPathEnvVar)
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Model.Similarity != "jaccard" {
		t.Errorf("Model.Similarity = %q, want jaccard", cfg.Model.Similarity)
	}
	if cfg.Model.TimeDecayCoefficient != 30 {
		t.Errorf("Model.TimeDecayCoefficient = %v, want 30", cfg.Model.TimeDecayCoefficient)
	}
	if cfg.Inject.BatchSize != 1000 || cfg.Inject.MaxRetries != 3 {
		t.Errorf("Inject = %+v, want batch 1000 retries 3", cfg.Inject)
	}
	if cfg.Inject.TransactionTimeout != 300*time.Second {
		t.Errorf("Inject.TransactionTimeout = %v, want 5m0s", cfg.Inject.TransactionTimeout)
	}
	if cfg.Health.MemoryLimit != "4096M" {
		t.Errorf("Health.MemoryLimit = %q, want 4096M", cfg.Health.MemoryLimit)
	}
	if cfg.Recommend.TopN != 10 || !cfg.Recommend.ExcludeSeen {
		t.Errorf("Recommend = %+v, want top 10 excluding seen", cfg.Recommend)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key       string
		value     string
		wantKey   string
		wantValue interface{}
	}{
		{"LOG_LEVEL", "debug", "logging.level", "debug"},
		{"BATCH_SIZE", "500", "inject.batch_size", "500"},
		{"MAX_RETRIES", "5", "inject.max_retries", "5"},
		{"TRANSACTION_TIMEOUT", "300", "inject.transaction_timeout", "5m0s"},
		{"TRANSACTION_TIMEOUT", "90s", "inject.transaction_timeout", "90s"},
		{"MEMORY_LIMIT", "2048M", "health.memory_limit", "2048M"},
		{"PROCESSED_DATA_PATH", "/data/in.parquet", "source.path", "/data/in.parquet"},
		{"DUCKDB_PATH", "/tmp/x.duckdb", "database.path", "/tmp/x.duckdb"},
		{"SIMILARITY_TYPE", "lift", "model.similarity", "lift"},
		{"TIME_NOW", "1700000000", "model.reference_time", "1700000000"},
		{"similarity_type", "lift", "model.similarity", "lift"},
		{"HOME", "/root", "", nil},
		{"PATH", "/usr/bin", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			gotKey, gotValue := envTransformFunc(tt.key, tt.value)
			if gotKey != tt.wantKey {
				t.Errorf("key = %q, want %q", gotKey, tt.wantKey)
			}
			if gotValue != tt.wantValue {
				t.Errorf("value = %v, want %v", gotValue, tt.wantValue)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("PROCESSED_DATA_PATH", "/data/interactions.parquet")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Path != "/data/interactions.parquet" {
		t.Errorf("Source.Path = %q", cfg.Source.Path)
	}
	if cfg.Database.Table != "recommendations" {
		t.Errorf("Database.Table = %q, want recommendations", cfg.Database.Table)
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %q, want 0.0.0.0:9090", cfg.Server.Addr())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PROCESSED_DATA_PATH", "/data/in.parquet")
	t.Setenv("SIMILARITY_TYPE", "LIFT")
	t.Setenv("BATCH_SIZE", "250")
	t.Setenv("TRANSACTION_TIMEOUT", "60")
	t.Setenv("ENABLE_TIME_DECAY", "false")
	t.Setenv("RECOMMEND_USERS", "u1, u2,,u3")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("HTTP_RATE_LIMIT_REQUESTS", "20")
	t.Setenv("HTTP_RATE_LIMIT_WINDOW", "30")
	t.Setenv("TIME_NOW", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Model.Similarity != "lift" {
		t.Errorf("Model.Similarity = %q, want lift", cfg.Model.Similarity)
	}
	if cfg.Inject.BatchSize != 250 {
		t.Errorf("Inject.BatchSize = %d, want 250", cfg.Inject.BatchSize)
	}
	if cfg.Inject.TransactionTimeout != time.Minute {
		t.Errorf("Inject.TransactionTimeout = %v, want 1m0s", cfg.Inject.TransactionTimeout)
	}
	if cfg.Model.EnableTimeDecay {
		t.Error("Model.EnableTimeDecay = true, want false")
	}
	if got := strings.Join(cfg.Recommend.Users, ","); got != "u1,u2,u3" {
		t.Errorf("Recommend.Users = %q, want u1,u2,u3", got)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("Server.Port = %d, want 8081", cfg.Server.Port)
	}
	if got := strings.Join(cfg.Server.CORSOrigins, ","); got != "https://a.example,https://b.example" {
		t.Errorf("Server.CORSOrigins = %q, want both origins", got)
	}
	if cfg.Server.RateLimitRequests != 20 || cfg.Server.RateLimitWindow != 30*time.Second {
		t.Errorf("rate limit = %d per %v, want 20 per 30s", cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)
	}
	if cfg.Model.ReferenceTime == nil || *cfg.Model.ReferenceTime != 0 {
		t.Errorf("Model.ReferenceTime = %v, want pointer to 0", cfg.Model.ReferenceTime)
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
model:
  similarity: lift
  time_decay_coefficient: 14
source:
  format: duckdb
  table: events
  timestamp_column: ts
recommend:
  top_n: 5
  users: [alice, bob]
inject:
  batch_size: 100
  retry_delay: 250ms
redis:
  enabled: true
  addr: redis:6379
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Model.TimeDecayCoefficient != 14 {
		t.Errorf("Model.TimeDecayCoefficient = %v, want 14", cfg.Model.TimeDecayCoefficient)
	}
	if cfg.Source.Table != "events" || cfg.Source.TimestampColumn != "ts" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Source.UserColumn != "UserId" {
		t.Errorf("Source.UserColumn = %q, want default UserId", cfg.Source.UserColumn)
	}
	if len(cfg.Recommend.Users) != 2 || cfg.Recommend.Users[1] != "bob" {
		t.Errorf("Recommend.Users = %v, want [alice bob]", cfg.Recommend.Users)
	}
	if cfg.Inject.RetryDelay != 250*time.Millisecond {
		t.Errorf("Inject.RetryDelay = %v, want 250ms", cfg.Inject.RetryDelay)
	}
	if !cfg.Redis.Enabled || cfg.Redis.KeyPrefix != "sar:recs:" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
source:
  path: /data/file.parquet
inject:
  batch_size: 100
`)
	t.Setenv("BATCH_SIZE", "42")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Inject.BatchSize != 42 {
		t.Errorf("Inject.BatchSize = %d, want 42", cfg.Inject.BatchSize)
	}
	if cfg.Source.Path != "/data/file.parquet" {
		t.Errorf("Source.Path = %q, want file value", cfg.Source.Path)
	}
}

func TestLoadFileMissing(t *testing.T) {
	isolate(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile(missing) error = nil, want error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Source.Path = "/data/in.parquet"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown similarity", func(c *Config) { c.Model.Similarity = "cosine" }, "similarity"},
		{"non-positive decay", func(c *Config) { c.Model.TimeDecayCoefficient = 0 }, "time_decay_coefficient"},
		{"missing path", func(c *Config) { c.Source.Path = "" }, "source.path"},
		{"duckdb without table", func(c *Config) { c.Source.Format = FormatDuckDB }, "source.table or source.query"},
		{"duckdb table and query", func(c *Config) {
			c.Source.Format = FormatDuckDB
			c.Source.Table = "events"
			c.Source.Query = "SELECT 1"
		}, "mutually exclusive"},
		{"bad column", func(c *Config) { c.Source.UserColumn = "user id" }, "user_column"},
		{"decay without timestamp", func(c *Config) { c.Source.TimestampColumn = "" }, "timestamp_column"},
		{"no decay without timestamp", func(c *Config) {
			c.Source.TimestampColumn = ""
			c.Model.EnableTimeDecay = false
		}, ""},
		{"zero batch", func(c *Config) { c.Inject.BatchSize = 0 }, "batch_size"},
		{"bad memory limit", func(c *Config) { c.Health.MemoryLimit = "plenty" }, "memory_limit"},
		{"bad table", func(c *Config) { c.Database.Table = "recs;" }, "table"},
		{"redis bad addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = "redis"
		}, "redis.addr"},
		{"evaluation without query", func(c *Config) { c.Evaluation.Enabled = true }, "evaluation.query"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"stdin csv on interval", func(c *Config) {
			c.Source.Format = FormatCSV
			c.Source.Path = "-"
			c.Pipeline.Interval = time.Hour
		}, "pipeline.interval"},
		{"stdin csv once", func(c *Config) {
			c.Source.Format = FormatCSV
			c.Source.Path = "-"
		}, ""},
		{"negative rate limit", func(c *Config) { c.Server.RateLimitRequests = -1 }, "rate_limit_requests"},
		{"zero rate limit window", func(c *Config) { c.Server.RateLimitWindow = 0 }, "rate_limit_window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRecommenderConfig(t *testing.T) {
	ref := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		ref     *float64
		want    *float64
		wantErr bool
	}{
		{"explicit reference", ref(1700000000), ref(1700000000), false},
		{"epoch is a valid reference", ref(0), ref(0), false},
		{"pre-epoch reference", ref(-86400), ref(-86400), false},
		{"unset derives from data", nil, nil, false},
		{"infinite reference", ref(math.Inf(1)), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ModelConfig{Similarity: "lift", TimeDecayCoefficient: 7, ReferenceTime: tt.ref, EnableTimeDecay: true}
			cfg, err := m.RecommenderConfig()
			if tt.wantErr {
				if err == nil {
					t.Error("RecommenderConfig() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("RecommenderConfig() error = %v", err)
			}
			if cfg.Similarity != recommend.SimilarityLift {
				t.Errorf("Similarity = %v, want lift", cfg.Similarity)
			}
			switch {
			case tt.want == nil && cfg.ReferenceTime != nil:
				t.Errorf("ReferenceTime = %v, want nil", *cfg.ReferenceTime)
			case tt.want != nil && (cfg.ReferenceTime == nil || *cfg.ReferenceTime != *tt.want):
				t.Errorf("ReferenceTime = %v, want %v", cfg.ReferenceTime, *tt.want)
			}
			if tt.ref != nil && cfg.ReferenceTime == tt.ref {
				t.Error("ReferenceTime aliases the section's pointer")
			}
		})
	}
}
