// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// Matrix is the output of Prepare: identifier spaces plus the weighted
// user-item interaction matrix.
type Matrix struct {
	Users     *Index
	Items     *Index
	UserItems *sparse.CSR

	// Decayed reports whether time decay was applied.
	Decayed bool

	// ReferenceTime is the decay origin in seconds. NaN when Decayed is false.
	ReferenceTime float64
}

// Prepare validates records and builds the sparse user-item matrix.
//
// With decay enabled and timestamped records, each rating is weighted by
// exp(-coef * (t0 - timestamp) / 86400) where t0 is cfg.ReferenceTime or the
// latest timestamp. Ratings for the same (user, item) pair are summed.
func Prepare(records []Interaction, cfg Config) (*Matrix, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &RecordError{Position: -1, Reason: "no interactions"}
	}

	timestamped, err := validateRecords(records, cfg.EnableTimeDecay)
	if err != nil {
		return nil, err
	}

	m := &Matrix{
		Users:         newIndex(len(records) / 4),
		Items:         newIndex(len(records) / 4),
		ReferenceTime: math.NaN(),
	}

	if cfg.EnableTimeDecay && timestamped {
		m.Decayed = true
		if cfg.ReferenceTime != nil {
			m.ReferenceTime = *cfg.ReferenceTime
		} else {
			m.ReferenceTime = maxTimestamp(records)
		}
	}

	rows := make([]int, len(records))
	cols := make([]int, len(records))
	vals := make([]float64, len(records))
	for n, rec := range records {
		rows[n] = m.Users.add(rec.UserID)
		cols[n] = m.Items.add(rec.ItemID)
		vals[n] = rec.Rating
		if m.Decayed {
			w := decayedWeight(rec.Rating, rec.Timestamp, m.ReferenceTime, cfg.TimeDecayCoefficient)
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, &RecordError{
					Position: n,
					Field:    "timestamp",
					Reason:   fmt.Sprintf("decayed weight is not finite (%v days after reference time)", (rec.Timestamp-m.ReferenceTime)/secondsPerDay),
				}
			}
			vals[n] = w
		}
	}

	ui, err := sparse.FromCOO(m.Users.Len(), m.Items.Len(), rows, cols, vals)
	if err != nil {
		return nil, fmt.Errorf("build interaction matrix: %w", err)
	}
	m.UserItems = ui
	return m, nil
}

// decayedWeight applies exponential decay measured in days.
func decayedWeight(rating, timestamp, reference, coefficient float64) float64 {
	days := (reference - timestamp) / secondsPerDay
	return rating * math.Exp(-coefficient*days)
}

// validateRecords checks required fields and reports whether the records
// carry timestamps. Timestamp consistency is only enforced when decay will
// use them.
func validateRecords(records []Interaction, checkTimestamps bool) (bool, error) {
	timestamped := records[0].HasTimestamp()
	for n, rec := range records {
		switch {
		case rec.UserID == "":
			return false, &RecordError{Position: n, Field: "user_id", Reason: "is empty"}
		case rec.ItemID == "":
			return false, &RecordError{Position: n, Field: "item_id", Reason: "is empty"}
		case math.IsNaN(rec.Rating) || math.IsInf(rec.Rating, 0):
			return false, &RecordError{Position: n, Field: "rating", Reason: fmt.Sprintf("is not finite (%v)", rec.Rating)}
		case rec.Rating < 0:
			return false, &RecordError{Position: n, Field: "rating", Reason: fmt.Sprintf("is negative (%v)", rec.Rating)}
		}

		if !checkTimestamps {
			continue
		}
		if math.IsInf(rec.Timestamp, 0) {
			return false, &RecordError{Position: n, Field: "timestamp", Reason: "is not finite"}
		}
		if rec.HasTimestamp() != timestamped {
			reason := "is missing while earlier records carry one"
			if !timestamped {
				reason = "is present while earlier records carry none"
			}
			return false, &RecordError{Position: n, Field: "timestamp", Reason: reason}
		}
	}
	return timestamped, nil
}

func maxTimestamp(records []Interaction) float64 {
	latest := math.Inf(-1)
	for _, rec := range records {
		if rec.Timestamp > latest {
			latest = rec.Timestamp
		}
	}
	return latest
}
