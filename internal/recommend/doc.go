// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

// Package recommend implements the SAR (Smart Adaptive Recommendations)
// item-similarity recommender.
//
// # Model
//
// Fitting runs in two stages:
//
//  1. Prepare maps user and item identifiers to dense indices in order of
//     first appearance and accumulates ratings into a sparse user-item
//     matrix, optionally applying exponential time decay measured in days.
//  2. A Similarity variant turns the interaction matrix into a sparse
//     item-item matrix. JaccardSimilarity divides co-occurrence by the union
//     of item frequencies. LiftSimilarity divides co-occurrence probability
//     by the product of item probabilities.
//
// Recommend multiplies each requested user's interaction row by the
// similarity matrix, masks seen items, keeps the top N scores with ties
// broken by item index and min-max normalizes the kept scores per user.
//
// # State
//
// A SAR value moves from untrained to trained exactly once. Fitting twice
// returns ErrAlreadyFitted; recommending before fitting returns
// ErrNotFitted. To retrain, construct a new SAR. The trained Snapshot is
// immutable and shared by all readers, so Recommend and SimilarItems are
// safe for concurrent use.
//
// # Usage
//
//	model, err := recommend.NewSAR(recommend.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if err := model.Fit(interactions); err != nil {
//	    return err
//	}
//	recs, err := model.Recommend([]string{"u1", "u2"}, 10, true)
//
// # Errors
//
// Configuration problems surface as *ConfigError before any computation,
// lifecycle misuse as *StateError, unknown identifiers as
// *UnknownEntityError and bad input rows as *RecordError. Every division by
// zero inside similarity and normalization resolves to 0 or to the
// unchanged score instead of an error.
//
// The package performs no I/O and has no notion of cancellation. Callers
// that need a time budget enforce it outside the model.
package recommend
