// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package services provides suture.Service wrappers for `sar serve`.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTPServerService:
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe to Serve

PipelineService:
  - Runs the pipeline immediately, then on pipeline.interval
  - Logs failed runs instead of crashing
  - Returns suture.ErrDoNotRestart when no interval is configured

HealthMonitorService:
  - Drives health.Checker.Monitor on health.check_interval
*/
package services
