// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"container/heap"
	"math"
	"sort"
)

// candidate is a scored column of the score vector.
type candidate struct {
	index int
	score float64
}

// better orders by score descending, then by lower index.
func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.index < b.index
}

// worstFirst is a bounded heap whose root is the weakest kept candidate.
type worstFirst []candidate

func (h worstFirst) Len() int            { return len(h) }
func (h worstFirst) Less(i, j int) bool  { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *worstFirst) Pop() interface{} {
	old := *h
	c := old[len(old)-1]
	*h = old[:len(old)-1]
	return c
}

// topN returns up to n candidates with finite scores, best first.
// Masked entries (-Inf) and NaN never qualify, so fewer than n candidates
// are returned when not enough finite scores exist.
func topN(scores []float64, n int) []candidate {
	if n <= 0 {
		return nil
	}
	h := make(worstFirst, 0, min(n, len(scores)))
	for j, s := range scores {
		if math.IsInf(s, 0) || math.IsNaN(s) {
			continue
		}
		c := candidate{index: j, score: s}
		if len(h) < n {
			heap.Push(&h, c)
			continue
		}
		if better(c, h[0]) {
			h[0] = c
			heap.Fix(&h, 0)
		}
	}

	out := []candidate(h)
	sort.Slice(out, func(a, b int) bool { return better(out[a], out[b]) })
	return out
}

// normalizeScores rescales scores into [0, 1] by min-max. When every score
// is equal the scores are left unchanged.
func normalizeScores(cands []candidate) {
	if len(cands) == 0 {
		return
	}
	lo, hi := cands[0].score, cands[0].score
	for _, c := range cands[1:] {
		lo = math.Min(lo, c.score)
		hi = math.Max(hi, c.score)
	}
	spread := hi - lo
	if spread == 0 {
		return
	}
	for k := range cands {
		cands[k].score = (cands[k].score - lo) / spread
	}
}
