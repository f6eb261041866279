// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"fmt"

	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// Similarity turns a user-item matrix into a sparse item-item matrix.
type Similarity interface {
	// Mode returns the similarity mode implemented.
	Mode() SimilarityMode

	// Compute returns the |items| x |items| similarity matrix.
	Compute(userItems *sparse.CSR) (*sparse.CSR, error)
}

// NewSimilarity returns the Similarity for mode. Unsupported modes fail
// here, before any matrix work.
func NewSimilarity(mode SimilarityMode) (Similarity, error) {
	parsed, err := ParseSimilarityMode(string(mode))
	if err != nil {
		return nil, err
	}
	switch parsed {
	case SimilarityLift:
		return LiftSimilarity{}, nil
	default:
		return JaccardSimilarity{}, nil
	}
}

// ComputeSimilarity is NewSimilarity followed by Compute.
func ComputeSimilarity(userItems *sparse.CSR, mode SimilarityMode) (*sparse.CSR, error) {
	sim, err := NewSimilarity(mode)
	if err != nil {
		return nil, err
	}
	return sim.Compute(userItems)
}

// cooccurrence returns AᵀA: entry (i, j) sums weight_i * weight_j over users.
func cooccurrence(userItems *sparse.CSR) (*sparse.CSR, error) {
	co, err := sparse.Mul(userItems.Transpose(), userItems)
	if err != nil {
		return nil, fmt.Errorf("co-occurrence: %w", err)
	}
	return co, nil
}

// JaccardSimilarity scores co(i,j) / (freq(i) + freq(j) - co(i,j)) where
// freq is the column sum of the interaction matrix.
type JaccardSimilarity struct{}

// Mode implements Similarity.
func (JaccardSimilarity) Mode() SimilarityMode { return SimilarityJaccard }

// Compute implements Similarity.
func (JaccardSimilarity) Compute(userItems *sparse.CSR) (*sparse.CSR, error) {
	co, err := cooccurrence(userItems)
	if err != nil {
		return nil, err
	}
	freq := userItems.ColSums()

	return co.Map(func(i, j int, c float64) float64 {
		return jaccardScore(c, freq[i], freq[j])
	}), nil
}

// jaccardScore resolves a zero union to 0.
func jaccardScore(co, freqI, freqJ float64) float64 {
	union := freqI + freqJ - co
	if union == 0 {
		return 0
	}
	return co / union
}

// LiftSimilarity scores P(i,j) / (P(i) * P(j)) with probabilities taken over
// the number of users.
type LiftSimilarity struct{}

// Mode implements Similarity.
func (LiftSimilarity) Mode() SimilarityMode { return SimilarityLift }

// Compute implements Similarity.
func (LiftSimilarity) Compute(userItems *sparse.CSR) (*sparse.CSR, error) {
	co, err := cooccurrence(userItems)
	if err != nil {
		return nil, err
	}

	users := float64(userItems.Rows())
	if users == 0 {
		return sparse.New(co.Rows(), co.Cols()), nil
	}
	prob := userItems.ColSums()
	for k := range prob {
		prob[k] /= users
	}

	return co.Map(func(i, j int, c float64) float64 {
		return liftScore(c, users, prob[i], prob[j])
	}), nil
}

// liftScore resolves a zero expected co-occurrence to 0.
func liftScore(co, users, probI, probJ float64) float64 {
	expected := probI * probJ
	if expected == 0 {
		return 0
	}
	return (co / users) / expected
}
