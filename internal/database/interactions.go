// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/sar/internal/database/query"
	"github.com/tomtom215/sar/internal/metrics"
	"github.com/tomtom215/sar/internal/recommend"
)

// InteractionColumns names the source columns. Rating and Timestamp may be
// empty: a missing rating column yields 1.0, a missing timestamp column
// yields recommend.NoTimestamp.
type InteractionColumns struct {
	User      string
	Item      string
	Rating    string
	Timestamp string
}

// QueryInteractions reads interactions from a FROM-clause item built with the
// query package (a table, read_parquet, read_csv_auto or a subquery). Rows
// with a NULL user or item are skipped. A NULL rating is returned as NaN and
// rejected by the model. Timestamp columns of TIMESTAMP or DATE type are
// converted to Unix seconds.
func (db *DB) QueryInteractions(ctx context.Context, from string, cols InteractionColumns) ([]recommend.Interaction, error) {
	if cols.User == "" || cols.Item == "" {
		return nil, errors.New("user and item columns are required")
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tsExpr, err := db.timestampExpr(ctx, from, cols.Timestamp)
	if err != nil {
		return nil, err
	}

	ratingExpr := "1.0"
	if cols.Rating != "" {
		ratingExpr = fmt.Sprintf("CAST(%s AS DOUBLE)", query.Ident(cols.Rating))
	}

	wb := query.NewWhereBuilder().AddNotNull(cols.User, cols.Item)
	where, args := wb.BuildWithPrefix()

	q := fmt.Sprintf(`SELECT CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), %s, %s FROM %s %s`,
		query.Ident(cols.User), query.Ident(cols.Item), ratingExpr, tsExpr, from, where)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []recommend.Interaction
	for rows.Next() {
		var (
			user, item string
			rating, ts sql.NullFloat64
		)
		if err := rows.Scan(&user, &item, &rating, &ts); err != nil {
			metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		in := recommend.Interaction{
			UserID:    user,
			ItemID:    item,
			Rating:    math.NaN(),
			Timestamp: recommend.NoTimestamp,
		}
		if rating.Valid {
			in.Rating = rating.Float64
		}
		if ts.Valid {
			in.Timestamp = ts.Float64
		}
		out = append(out, in)
	}
	err = rows.Err()
	metrics.RecordDBQuery("SELECT", "interactions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}

// timestampExpr returns a DOUBLE expression of Unix seconds for column, or a
// NULL literal when column is empty.
func (db *DB) timestampExpr(ctx context.Context, from, column string) (string, error) {
	if column == "" {
		return "CAST(NULL AS DOUBLE)", nil
	}
	col := query.Ident(column)

	var typ sql.NullString
	err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT typeof(%s) FROM %s LIMIT 1", col, from)).Scan(&typ)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("inspect timestamp column %s: %w", column, err)
	}

	t := strings.ToUpper(typ.String)
	if strings.HasPrefix(t, "TIMESTAMP") || t == "DATE" {
		return fmt.Sprintf("CAST(epoch(%s) AS DOUBLE)", col), nil
	}
	return fmt.Sprintf("CAST(%s AS DOUBLE)", col), nil
}
