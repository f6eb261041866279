// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package source loads training interactions.

The Loader turns a source configuration into a DuckDB FROM item and reads it
through the database package:

	format   path/table/query          FROM item
	parquet  /data/processed/*.parquet read_parquet('/data/processed/*.parquet')
	csv      /data/ratings.csv         read_csv_auto('/data/ratings.csv')
	duckdb   table: events             "events"
	duckdb   query: SELECT ...         (SELECT ...) AS src

A csv source with path "-" is read from the Loader's stdin reader with
ReadCSV instead of DuckDB.

Filter applies an optional CEL expression to the loaded records. The
expression sees user and item as strings and rating and timestamp as
doubles:

	rating >= 3.0 && !item.startsWith("trailer-")
*/
package source
