// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/tomtom215/sar/internal/config"
	"github.com/tomtom215/sar/internal/logging"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/validation"
)

// ErrUnhealthy is returned by Report.Err when a check failed.
var ErrUnhealthy = errors.New("unhealthy")

// Check names.
const (
	CheckDatabase = "database"
	CheckMemory   = "memory"
)

// Pinger verifies database connectivity. *database.DB satisfies it.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// MemoryReader returns the process resident set size in bytes.
type MemoryReader func(ctx context.Context) (uint64, error)

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string        `json:"name"`
	Healthy  bool          `json:"healthy"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the outcome of a full health check.
type Report struct {
	Status    string        `json:"status"`
	Healthy   bool          `json:"healthy"`
	Checks    []CheckResult `json:"checks"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Err returns nil when healthy, otherwise ErrUnhealthy naming failed checks.
func (r Report) Err() error {
	if r.Healthy {
		return nil
	}
	var failed []string
	for _, c := range r.Checks {
		if !c.Healthy {
			failed = append(failed, fmt.Sprintf("%s: %s", c.Name, c.Message))
		}
	}
	return fmt.Errorf("%w: %s", ErrUnhealthy, strings.Join(failed, "; "))
}

// Checker runs the health checks.
type Checker struct {
	db    Pinger
	limit uint64
	rss   MemoryReader

	mu   sync.RWMutex
	last *Report
}

// NewChecker creates a Checker. db may be nil, which fails the database check.
func NewChecker(db Pinger, cfg config.HealthConfig) (*Checker, error) {
	limit, err := ParseMemoryLimit(cfg.MemoryLimit)
	if err != nil {
		return nil, err
	}
	return &Checker{db: db, limit: limit, rss: ProcessRSS}, nil
}

// WithMemoryReader replaces the RSS source.
func (c *Checker) WithMemoryReader(r MemoryReader) *Checker {
	c.rss = r
	return c
}

// Limit returns the memory limit in bytes.
func (c *Checker) Limit() uint64 {
	return c.limit
}

// ParseMemoryLimit parses a limit such as "4096M" or "2G". A bare number is
// megabytes.
func ParseMemoryLimit(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		if n == 0 {
			return 0, fmt.Errorf("memory limit must be positive, got %q", s)
		}
		return n << 20, nil
	}
	n, err := validation.ParseMemorySize(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("memory limit must be positive, got %q", s)
	}
	return uint64(n), nil
}

// ProcessRSS reads the resident set size of the current process.
func ProcessRSS(ctx context.Context) (uint64, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())) //nolint:gosec
	if err != nil {
		return 0, err
	}
	info, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// Check runs every check and records the outcome.
func (c *Checker) Check(ctx context.Context) Report {
	checks := []CheckResult{
		c.checkDatabase(ctx),
		c.checkMemory(ctx),
	}

	report := Report{Status: "healthy", Healthy: true, Checks: checks, CheckedAt: time.Now().UTC()}
	for _, chk := range checks {
		metrics.RecordHealthCheck(chk.Name, chk.Healthy)
		if !chk.Healthy {
			report.Healthy = false
			report.Status = "unhealthy"
		}
	}

	c.mu.Lock()
	c.last = &report
	c.mu.Unlock()
	return report
}

// Last returns the most recent report, or nil before the first check.
func (c *Checker) Last() *Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *Checker) checkDatabase(ctx context.Context) CheckResult {
	start := time.Now()
	res := CheckResult{Name: CheckDatabase, Healthy: true}

	switch {
	case c.db == nil:
		res.Healthy = false
		res.Message = "database not configured"
	default:
		if err := c.db.HealthCheck(ctx); err != nil {
			res.Healthy = false
			res.Message = err.Error()
			logging.Ctx(ctx).Error().Err(err).Msg("Database connection failed")
		}
	}
	res.Duration = time.Since(start)
	return res
}

func (c *Checker) checkMemory(ctx context.Context) CheckResult {
	start := time.Now()
	res := CheckResult{Name: CheckMemory}

	rss, err := c.rss(ctx)
	switch {
	case err != nil:
		res.Message = err.Error()
		logging.Ctx(ctx).Error().Err(err).Msg("Memory check failed")
	case rss >= c.limit:
		res.Message = fmt.Sprintf("rss %d MB exceeds limit %d MB", rss>>20, c.limit>>20)
	default:
		res.Healthy = true
		res.Message = fmt.Sprintf("rss %d MB of %d MB", rss>>20, c.limit>>20)
	}
	res.Duration = time.Since(start)
	return res
}

// Monitor re-runs the checks on an interval until ctx ends.
func (c *Checker) Monitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := logging.WithComponent("health")
	wasHealthy := true
	for {
		report := c.Check(ctx)
		if report.Healthy != wasHealthy {
			if report.Healthy {
				log.Info().Msg("Health check passed")
			} else {
				log.Warn().Err(report.Err()).Msg("Health check failed")
			}
			wasHealthy = report.Healthy
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
