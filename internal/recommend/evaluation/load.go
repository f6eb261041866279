// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/sar/internal/database/query"
)

// Querier runs a read query. *database.DB satisfies it.
type Querier interface {
	QueryContext(ctx context.Context, table, query string, args ...interface{}) (*sql.Rows, error)
}

// LoadTruth runs sqlText and reads ground truth from the columns named in
// opts. Rows with a NULL user or item are skipped; a NULL rating reads as 0.
func LoadTruth(ctx context.Context, q Querier, sqlText string, opts Options) ([]Truth, error) {
	if opts.UserColumn == "" || opts.ItemColumn == "" {
		return nil, errors.New("evaluation: user and item columns are required")
	}

	rating := "CAST(1.0 AS DOUBLE)"
	if opts.RatingColumn != "" {
		rating = fmt.Sprintf("CAST(%s AS DOUBLE)", query.Ident(opts.RatingColumn))
	}
	where, args := query.NewWhereBuilder().AddNotNull(opts.UserColumn, opts.ItemColumn).BuildWithPrefix()
	stmt := fmt.Sprintf("SELECT CAST(%s AS VARCHAR), CAST(%s AS VARCHAR), %s FROM %s %s",
		query.Ident(opts.UserColumn), query.Ident(opts.ItemColumn), rating, query.Subquery(sqlText), where)

	rows, err := q.QueryContext(ctx, "evaluation", stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("evaluation: query ground truth: %w", err)
	}
	defer rows.Close()

	var out []Truth
	for rows.Next() {
		var (
			t Truth
			r sql.NullFloat64
		)
		if err := rows.Scan(&t.UserID, &t.ItemID, &r); err != nil {
			return nil, fmt.Errorf("evaluation: scan ground truth: %w", err)
		}
		t.Rating = r.Float64
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("evaluation: read ground truth: %w", err)
	}
	return out, nil
}
