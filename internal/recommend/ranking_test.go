// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"math"
	"testing"
)

func TestTopN(t *testing.T) {
	inf := math.Inf(-1)

	tests := []struct {
		name   string
		scores []float64
		n      int
		want   []int
	}{
		{"picks highest", []float64{0.1, 0.9, 0.5, 0.7}, 2, []int{1, 3}},
		{"ties by lower index", []float64{0.5, 0.9, 0.5, 0.5}, 3, []int{1, 0, 2}},
		{"skips masked", []float64{inf, 0.2, inf, 0.1}, 4, []int{1, 3}},
		{"skips NaN", []float64{math.NaN(), 0.3}, 2, []int{1}},
		{"zero scores qualify", []float64{0, 0, 1}, 3, []int{2, 0, 1}},
		{"all masked", []float64{inf, inf}, 2, nil},
		{"n larger than candidates", []float64{0.4, 0.6}, 10, []int{1, 0}},
		{"non-positive n", []float64{0.4}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := topN(tt.scores, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("topN() returned %d candidates, want %d", len(got), len(tt.want))
			}
			for k := range tt.want {
				if got[k].index != tt.want[k] {
					t.Errorf("topN()[%d].index = %d, want %d", k, got[k].index, tt.want[k])
				}
			}
		})
	}
}

func TestTopNMatchesFullSort(t *testing.T) {
	scores := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	got := topN(scores, 5)
	want := []int{5, 7, 4, 8, 10}
	for k := range want {
		if got[k].index != want[k] {
			t.Fatalf("topN() indices = %v, want %v", indices(got), want)
		}
	}
}

func indices(cands []candidate) []int {
	out := make([]int, len(cands))
	for k, c := range cands {
		out[k] = c.index
	}
	return out
}

func TestNormalizeScores(t *testing.T) {
	t.Run("min-max", func(t *testing.T) {
		c := []candidate{{0, 4}, {1, 3}, {2, 2}}
		normalizeScores(c)
		want := []float64{1, 0.5, 0}
		for k := range want {
			if c[k].score != want[k] {
				t.Errorf("score[%d] = %v, want %v", k, c[k].score, want[k])
			}
		}
	})

	t.Run("equal scores pass through", func(t *testing.T) {
		c := []candidate{{0, 1.5}, {1, 1.5}}
		normalizeScores(c)
		for k := range c {
			if c[k].score != 1.5 {
				t.Errorf("score[%d] = %v, want 1.5", k, c[k].score)
			}
		}
	})

	t.Run("empty", func(t *testing.T) {
		normalizeScores(nil)
	})
}
