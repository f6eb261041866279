// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

/*
Package query builds the SQL fragments the database package splices into
DuckDB statements.

Column and table names come from configuration, so they are quoted with
Ident rather than bound as parameters. Values are always bound:

	wb := query.NewWhereBuilder()
	wb.AddEquals("user_id", userID).AddEquals("run_id", runID)
	where, args := wb.BuildWithPrefix()
	// WHERE "user_id" = ? AND "run_id" = ?

Interaction sources are expressed as FROM-clause items:

	query.Table("events")                  // "events"
	query.ReadParquet("/data/*.parquet")   // read_parquet('/data/*.parquet')
	query.ReadCSV("/data/ratings.csv")     // read_csv_auto('/data/ratings.csv')
	query.Subquery("SELECT * FROM events") // (SELECT * FROM events) AS src
*/
package query
