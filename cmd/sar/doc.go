// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Command sar fits a Smart Adaptive Recommendations model over user/item
interactions and writes the top-N recommendations per user to DuckDB and,
optionally, Redis.

# Commands

	sar run [-config path] [-output file|-]
	sar serve [-config path]
	sar healthcheck [-config path]
	sar version

`run` executes one pipeline: load, filter, fit, recommend, evaluate (if
configured) and inject. The exit code is 1 unless every recommendation was
injected. With `-output` the generated recommendations are also written as
JSON; "-" writes them to stdout.

`serve` runs the pipeline under a suture supervisor tree, repeating on
pipeline.interval, and exposes the status API:

	RootSupervisor ("sar")
	├── PipelineSupervisor ("pipeline-layer")
	│   ├── PipelineService
	│   └── HealthMonitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (if server.enabled)

`healthcheck` pings DuckDB and compares process RSS with health.memory_limit.
It exits 0 when both pass and 1 otherwise, for use as a container HEALTHCHECK.

# Configuration

Configuration is loaded via koanf v2 (highest priority wins):
  - Environment variables (PROCESSED_DATA_PATH, BATCH_SIZE, MAX_RETRIES, ...)
  - Config file (-config, CONFIG_PATH, ./config.yaml, /etc/sar/config.yaml)
  - Built-in defaults

A CSV source with path "-" reads interactions from stdin:

	cat events.csv | SOURCE_FORMAT=csv PROCESSED_DATA_PATH=- sar run -output -

# Signal Handling

SIGINT and SIGTERM cancel the root context. `run` stops between batches and
reports the remaining rows as failed; `serve` shuts the HTTP server down
gracefully and waits for the supervisor tree to stop.
*/
package main
