// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import "math"

// NoTimestamp marks an interaction without a timestamp.
var NoTimestamp = math.NaN()

// Interaction is one observed user-item event.
type Interaction struct {
	// UserID identifies the user.
	UserID string `json:"user_id"`

	// ItemID identifies the item.
	ItemID string `json:"item_id"`

	// Rating is the non-negative interaction strength.
	Rating float64 `json:"rating"`

	// Timestamp is the event time in seconds. NoTimestamp when the source
	// carries no time information.
	Timestamp float64 `json:"timestamp"`
}

// HasTimestamp reports whether the interaction carries a timestamp.
func (i Interaction) HasTimestamp() bool {
	return !math.IsNaN(i.Timestamp)
}

// Recommendation is one ranked item for a user.
type Recommendation struct {
	UserID string  `json:"user_id"`
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// ItemScore is one ranked item in an item-to-item lookup.
type ItemScore struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// Recommender is a batch-fit, batch-score model.
type Recommender interface {
	// Fit trains the model once on the given interactions.
	Fit(records []Interaction) error

	// Recommend returns up to n ranked items per user, grouped by user in
	// request order.
	Recommend(userIDs []string, n int, excludeSeen bool) ([]Recommendation, error)
}
