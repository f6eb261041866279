// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package query

import (
	"fmt"
	"strings"
)

// Ident quotes a SQL identifier, doubling embedded quotes.
func Ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Literal quotes a SQL string literal, doubling embedded quotes.
func Literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Table returns a quoted table reference.
func Table(name string) string {
	return Ident(name)
}

// ReadParquet returns a read_parquet table function over path.
func ReadParquet(path string) string {
	return fmt.Sprintf("read_parquet(%s)", Literal(path))
}

// ReadCSV returns a read_csv_auto table function over path.
func ReadCSV(path string) string {
	return fmt.Sprintf("read_csv_auto(%s)", Literal(path))
}

// Subquery wraps a SELECT so it can be used as a FROM item.
func Subquery(sql string) string {
	return "(" + strings.TrimRight(strings.TrimSpace(sql), ";") + ") AS src"
}

// WhereBuilder constructs SQL WHERE clauses with bound arguments.
type WhereBuilder struct {
	clauses []string
	args    []interface{}
}

// NewWhereBuilder creates an empty WhereBuilder.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{
		clauses: []string{},
		args:    []interface{}{},
	}
}

// AddClause adds a raw condition with its arguments.
func (wb *WhereBuilder) AddClause(clause string, args ...interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, clause)
	wb.args = append(wb.args, args...)
	return wb
}

// AddEquals adds "column = ?".
func (wb *WhereBuilder) AddEquals(column string, value interface{}) *WhereBuilder {
	return wb.AddClause(Ident(column)+" = ?", value)
}

// AddNotNull adds "column IS NOT NULL" for each column.
func (wb *WhereBuilder) AddNotNull(columns ...string) *WhereBuilder {
	for _, c := range columns {
		wb.clauses = append(wb.clauses, Ident(c)+" IS NOT NULL")
	}
	return wb
}

// Build joins the clauses with AND. It returns ("1=1", []) when empty.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.clauses) == 0 {
		return "1=1", []interface{}{}
	}
	return strings.Join(wb.clauses, " AND "), wb.args
}

// BuildWithPrefix is Build with a leading "WHERE ".
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}
