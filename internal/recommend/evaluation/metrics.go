// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/tomtom215/sar/internal/recommend"
)

// ErrInvalidK is returned when the cutoff is not positive.
var ErrInvalidK = errors.New("evaluation: k must be positive")

// Default column names, matching the interaction source defaults.
const (
	DefaultUserColumn = "UserId"
	DefaultItemColumn = "ItemId"
)

// Truth is one held-out ground-truth interaction.
type Truth struct {
	UserID string
	ItemID string
	Rating float64
}

// Options configures a metric computation.
type Options struct {
	// K is the ranking cutoff.
	K int

	// UserColumn and ItemColumn name the ground-truth columns read by LoadTruth.
	UserColumn string
	ItemColumn string

	// RatingColumn, when set, is loaded as graded relevance for NDCG.
	// When empty every relevant item has relevance 1.
	RatingColumn string
}

// DefaultOptions returns options with cutoff k and the default column names.
func DefaultOptions(k int) Options {
	return Options{K: k, UserColumn: DefaultUserColumn, ItemColumn: DefaultItemColumn}
}

func (o Options) validate() error {
	if o.K < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidK, o.K)
	}
	return nil
}

// userTruth holds one user's relevant items with their relevance.
type userTruth struct {
	user  string
	items map[string]float64
}

// groupTruth groups ground truth by user in first-appearance order. The first
// rating seen for a (user, item) pair wins.
func groupTruth(truth []Truth, graded bool) []userTruth {
	pos := make(map[string]int)
	var out []userTruth
	for _, t := range truth {
		p, ok := pos[t.UserID]
		if !ok {
			p = len(out)
			pos[t.UserID] = p
			out = append(out, userTruth{user: t.UserID, items: make(map[string]float64)})
		}
		if _, dup := out[p].items[t.ItemID]; dup {
			continue
		}
		rel := 1.0
		if graded {
			rel = t.Rating
		}
		out[p].items[t.ItemID] = rel
	}
	return out
}

// topKByUser keeps each user's first k predictions in output order.
func topKByUser(preds []recommend.Recommendation, k int) map[string][]string {
	out := make(map[string][]string)
	for _, p := range preds {
		if len(out[p.UserID]) < k {
			out[p.UserID] = append(out[p.UserID], p.ItemID)
		}
	}
	return out
}

// average applies perUser to every user with ground truth and returns the mean.
func average(truth []Truth, preds []recommend.Recommendation, opts Options, graded bool,
	perUser func(relevant map[string]float64, ranked []string, k int) float64,
) (float64, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}

	users := groupTruth(truth, graded)
	ranked := topKByUser(preds, opts.K)
	values := make([]float64, 0, len(users))
	for _, u := range users {
		if len(u.items) == 0 {
			continue
		}
		values = append(values, perUser(u.items, ranked[u.user], opts.K))
	}
	if len(values) == 0 {
		return 0, nil
	}
	return stat.Mean(values, nil), nil
}

func hitCount(relevant map[string]float64, ranked []string) int {
	hits := 0
	for _, item := range ranked {
		if _, ok := relevant[item]; ok {
			hits++
		}
	}
	return hits
}

// PrecisionAtK is the mean over ground-truth users of hits in the top k / k.
func PrecisionAtK(truth []Truth, preds []recommend.Recommendation, opts Options) (float64, error) {
	return average(truth, preds, opts, false, func(relevant map[string]float64, ranked []string, k int) float64 {
		return float64(hitCount(relevant, ranked)) / float64(k)
	})
}

// RecallAtK is the mean over ground-truth users of hits in the top k divided
// by the user's number of relevant items.
func RecallAtK(truth []Truth, preds []recommend.Recommendation, opts Options) (float64, error) {
	return average(truth, preds, opts, false, func(relevant map[string]float64, ranked []string, _ int) float64 {
		return float64(hitCount(relevant, ranked)) / float64(len(relevant))
	})
}

// NDCGAtK is the mean normalized discounted cumulative gain at k. Relevance
// is the ground-truth rating when opts.RatingColumn is set, otherwise 1.
func NDCGAtK(truth []Truth, preds []recommend.Recommendation, opts Options) (float64, error) {
	graded := opts.RatingColumn != ""
	return average(truth, preds, opts, graded, func(relevant map[string]float64, ranked []string, k int) float64 {
		gains := make([]float64, len(ranked))
		for pos, item := range ranked {
			gains[pos] = relevant[item] / math.Log2(float64(pos)+2)
		}
		dcg := floats.Sum(gains)

		ideal := make([]float64, 0, len(relevant))
		for _, rel := range relevant {
			ideal = append(ideal, rel)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))
		if len(ideal) > k {
			ideal = ideal[:k]
		}
		for pos := range ideal {
			ideal[pos] /= math.Log2(float64(pos) + 2)
		}
		idcg := floats.Sum(ideal)
		if idcg == 0 {
			return 0
		}
		return dcg / idcg
	})
}

// MAPAtK is the mean average precision at k: for each user, the sum of
// precision at every hit divided by min(relevant items, k). Users without
// hits contribute 0.
func MAPAtK(truth []Truth, preds []recommend.Recommendation, opts Options) (float64, error) {
	return average(truth, preds, opts, false, func(relevant map[string]float64, ranked []string, k int) float64 {
		hits := 0
		sum := 0.0
		for pos, item := range ranked {
			if _, ok := relevant[item]; ok {
				hits++
				sum += float64(hits) / float64(pos+1)
			}
		}
		return sum / float64(min(len(relevant), k))
	})
}

// Report holds every metric at one cutoff.
type Report struct {
	K         int     `json:"k"`
	Users     int     `json:"users"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	NDCG      float64 `json:"ndcg"`
	MAP       float64 `json:"map"`
}

// Metrics returns the report as name/value pairs.
func (r Report) Metrics() map[string]float64 {
	return map[string]float64{
		"precision": r.Precision,
		"recall":    r.Recall,
		"ndcg":      r.NDCG,
		"map":       r.MAP,
	}
}

// Evaluate computes all four metrics.
func Evaluate(truth []Truth, preds []recommend.Recommendation, opts Options) (Report, error) {
	report := Report{K: opts.K, Users: len(groupTruth(truth, false))}

	var err error
	if report.Precision, err = PrecisionAtK(truth, preds, opts); err != nil {
		return Report{}, err
	}
	if report.Recall, err = RecallAtK(truth, preds, opts); err != nil {
		return Report{}, err
	}
	if report.NDCG, err = NDCGAtK(truth, preds, opts); err != nil {
		return Report{}, err
	}
	if report.MAP, err = MAPAtK(truth, preds, opts); err != nil {
		return Report{}, err
	}
	return report, nil
}
