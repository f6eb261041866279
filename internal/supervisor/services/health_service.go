// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package services

import (
	"context"
	"time"
)

const defaultCheckInterval = 30 * time.Second

// HealthMonitor re-runs health checks until ctx ends.
// Satisfied by *health.Checker.
type HealthMonitor interface {
	Monitor(ctx context.Context, interval time.Duration) error
}

// HealthMonitorService keeps the cached health report fresh for the API and
// the health gauges.
type HealthMonitorService struct {
	monitor  HealthMonitor
	interval time.Duration
	name     string
}

// NewHealthMonitorService wraps monitor. A non-positive interval uses 30s.
func NewHealthMonitorService(monitor HealthMonitor, interval time.Duration) *HealthMonitorService {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &HealthMonitorService{
		monitor:  monitor,
		interval: interval,
		name:     "health-monitor",
	}
}

// Serve implements suture.Service.
func (s *HealthMonitorService) Serve(ctx context.Context) error {
	return s.monitor.Monitor(ctx, s.interval)
}

// String returns the service name for logging.
func (s *HealthMonitorService) String() string {
	return s.name
}
