// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package database wraps the DuckDB connection SAR reads interactions from and
writes recommendations to.

DuckDB is used in two roles. As a query engine it reads training data from
tables, ad-hoc queries, or files through read_parquet and read_csv_auto,
which keeps the loader free of format-specific parsing. As the output store
it holds the recommendations table (one row per user, item and rank, keyed
by run) and sar_runs, the run history behind the status endpoint.

File Organization:
  - database.go: connection setup, Close, Ping and HealthCheck
  - database_connection.go: connection pool tuning
  - database_schema.go: table creation
  - database_utils.go: context defaults, CHECKPOINT, profiling
  - interactions.go: interaction loading with configurable columns
  - recommendations.go: batched, transactional recommendation writes and reads
  - runs.go: pipeline run history
  - errors.go: close helpers

Every query records duration and errors through internal/metrics.

Thread Safety:
DB is safe for concurrent use; database/sql pools the underlying connections.
*/
package database
