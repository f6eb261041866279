// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package supervisor provides process supervision for `sar serve` using suture v4.

`sar run` executes the pipeline once and exits; it is not supervised. `sar
serve` keeps the process alive and hands every long-running component to a
supervisor tree with automatic restart and graceful shutdown.

# Overview

	RootSupervisor ("sar")
	├── PipelineSupervisor ("pipeline-layer")
	│   ├── PipelineService (scheduled runs)
	│   └── HealthMonitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if server.enabled)

A pipeline run that crashes restarts only the pipeline layer. The API keeps
serving the last summary and the persisted recommendations.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"),
	    supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPipelineService(services.NewPipelineService(p, cfg.Pipeline.Interval))
	tree.AddPipelineService(services.NewHealthMonitorService(checker, cfg.Health.CheckInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Failure Handling

Each failure increments a counter that decays over FailureDecay seconds. When
the counter exceeds FailureThreshold the supervisor waits FailureBackoff before
restarting. Services that return suture.ErrDoNotRestart are not restarted; the
pipeline service uses this when no interval is configured.

# What Is NOT Supervised

DuckDB is embedded and is owned by the database package. Redis reconnection is
handled by go-redis itself, and sink failures are isolated by the injector's
circuit breaker.
*/
package supervisor
