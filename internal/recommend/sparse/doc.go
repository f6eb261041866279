// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package sparse provides the compressed sparse row matrix used by the
// recommender for user-item interactions and item-item similarity.
//
// A CSR matrix stores only nonzero entries. Within each row the column
// indices are strictly increasing, which gives deterministic iteration order
// and allows binary search in At.
//
// # Operations
//
//   - FromCOO builds a matrix from coordinate triples, summing duplicates
//   - Transpose, Mul (sparse times sparse, Gustavson's algorithm)
//   - MulRowInto scores one row against a matrix into a dense buffer
//   - ColSums, ColNonzero, RowSums, Sum for aggregation
//   - Map rewrites stored values without changing the sparsity pattern
//
// No operation materializes a dense rows x cols array. Matrices are
// immutable after construction and safe for concurrent reads.
package sparse
