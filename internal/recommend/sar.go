// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/sar/internal/recommend/sparse"
)

// State is the lifecycle state of a SAR model.
type State int

const (
	// StateUntrained is the state of a new model.
	StateUntrained State = iota
	// StateTrained is entered once, by a successful Fit.
	StateTrained
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// Snapshot is the immutable fitted state of a SAR model.
type Snapshot struct {
	Users      *Index
	Items      *Index
	UserItems  *sparse.CSR
	Similarity *sparse.CSR

	// ItemMeans holds each item's column sum divided by its number of
	// interacting users, indexed like Items.
	ItemMeans []float64

	Decayed       bool
	ReferenceTime float64
	FittedAt      time.Time
}

// SAR is the item-similarity recommender. It implements Recommender.
type SAR struct {
	cfg        Config
	similarity Similarity

	fitMu    sync.Mutex
	snapshot atomic.Pointer[Snapshot]
}

var _ Recommender = (*SAR)(nil)

// NewSAR validates cfg and returns an untrained model.
func NewSAR(cfg Config) (*SAR, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sim, err := NewSimilarity(cfg.Similarity)
	if err != nil {
		return nil, err
	}
	cfg.Similarity = sim.Mode()

	return &SAR{cfg: cfg, similarity: sim}, nil
}

// Config returns a copy of the model configuration.
func (s *SAR) Config() Config {
	return s.cfg.Clone()
}

// State returns the current lifecycle state.
func (s *SAR) State() State {
	if s.snapshot.Load() == nil {
		return StateUntrained
	}
	return StateTrained
}

// Snapshot returns the fitted state, or nil before Fit succeeds.
func (s *SAR) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Fit builds the interaction and similarity matrices. A model can be
// fitted once; a failed Fit leaves it untrained.
func (s *SAR) Fit(records []Interaction) error {
	s.fitMu.Lock()
	defer s.fitMu.Unlock()

	if s.snapshot.Load() != nil {
		return &StateError{Op: "fit", Err: ErrAlreadyFitted}
	}

	m, err := Prepare(records, s.cfg)
	if err != nil {
		return err
	}
	sim, err := s.similarity.Compute(m.UserItems)
	if err != nil {
		return fmt.Errorf("compute %s similarity: %w", s.similarity.Mode(), err)
	}

	s.snapshot.Store(&Snapshot{
		Users:         m.Users,
		Items:         m.Items,
		UserItems:     m.UserItems,
		Similarity:    sim,
		ItemMeans:     itemMeans(m.UserItems),
		Decayed:       m.Decayed,
		ReferenceTime: m.ReferenceTime,
		FittedAt:      time.Now(),
	})
	return nil
}

func (s *SAR) trained(op string) (*Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, &StateError{Op: op, Err: ErrNotFitted}
	}
	return snap, nil
}

// Recommend returns up to n items per user. Users appear in request order,
// each block ranked best first with ties broken by item index. Scores are
// min-max normalized per user unless all of them are equal.
//
// Only items with finite scores are ranked: with excludeSeen a user whose
// unseen items number fewer than n receives fewer than n rows.
// Any unknown user fails the whole call.
func (s *SAR) Recommend(userIDs []string, n int, excludeSeen bool) ([]Recommendation, error) {
	snap, err := s.trained("recommend")
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, &ConfigError{Field: "n", Reason: fmt.Sprintf("must be positive, got %d", n), Err: ErrInvalidCount}
	}

	rows := make([]int, len(userIDs))
	var missing []string
	for k, id := range userIDs {
		p, ok := snap.Users.Position(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		rows[k] = p
	}
	if len(missing) > 0 {
		return nil, &UnknownEntityError{IDs: missing, Err: ErrUnknownUser}
	}

	scores := make([]float64, snap.Items.Len())
	out := make([]Recommendation, 0, len(userIDs)*min(n, snap.Items.Len()))
	for k, row := range rows {
		if err := snap.UserItems.MulRowInto(row, snap.Similarity, scores); err != nil {
			return nil, fmt.Errorf("score user %q: %w", userIDs[k], err)
		}
		if excludeSeen {
			seen, _ := snap.UserItems.Row(row)
			for _, j := range seen {
				scores[j] = math.Inf(-1)
			}
		}

		cands := topN(scores, n)
		normalizeScores(cands)
		for _, c := range cands {
			out = append(out, Recommendation{
				UserID: userIDs[k],
				ItemID: snap.Items.ID(c.index),
				Score:  c.score,
			})
		}
	}
	return out, nil
}

// SimilarItems returns up to n items most similar to itemID, excluding the
// item itself. Scores are raw similarity values; items with no similarity
// are not returned.
func (s *SAR) SimilarItems(itemID string, n int) ([]ItemScore, error) {
	snap, err := s.trained("similar items")
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, &ConfigError{Field: "n", Reason: fmt.Sprintf("must be positive, got %d", n), Err: ErrInvalidCount}
	}
	p, ok := snap.Items.Position(itemID)
	if !ok {
		return nil, &UnknownEntityError{IDs: []string{itemID}, Err: ErrUnknownItem}
	}

	scores := make([]float64, snap.Items.Len())
	for j := range scores {
		scores[j] = math.Inf(-1)
	}
	cols, vals := snap.Similarity.Row(p)
	for k, j := range cols {
		scores[j] = vals[k]
	}
	scores[p] = math.Inf(-1)

	cands := topN(scores, n)
	out := make([]ItemScore, len(cands))
	for k, c := range cands {
		out[k] = ItemScore{ItemID: snap.Items.ID(c.index), Score: c.score}
	}
	return out, nil
}

// ItemMeans returns each item's mean nonzero interaction weight.
func (s *SAR) ItemMeans() (map[string]float64, error) {
	snap, err := s.trained("item means")
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(snap.ItemMeans))
	for j, mean := range snap.ItemMeans {
		out[snap.Items.ID(j)] = mean
	}
	return out, nil
}

// Users returns the fitted user identifiers in index order.
func (s *SAR) Users() ([]string, error) {
	snap, err := s.trained("users")
	if err != nil {
		return nil, err
	}
	return snap.Users.IDs(), nil
}

// Items returns the fitted item identifiers in index order.
func (s *SAR) Items() ([]string, error) {
	snap, err := s.trained("items")
	if err != nil {
		return nil, err
	}
	return snap.Items.IDs(), nil
}

// itemMeans divides column sums by stored entries per column; empty columns yield 0.
func itemMeans(userItems *sparse.CSR) []float64 {
	sums := userItems.ColSums()
	counts := userItems.ColNonzero()
	for j := range sums {
		if counts[j] == 0 {
			sums[j] = 0
			continue
		}
		sums[j] /= float64(counts[j])
	}
	return sums
}
