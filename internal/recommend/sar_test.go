// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

// fourInteractions: u1 saw i1,i2 and u2 saw i1,i3, all at the same time.
func fourInteractions() []Interaction {
	const t0 = 1_700_000_000
	return []Interaction{
		{UserID: "u1", ItemID: "i1", Rating: 1, Timestamp: t0},
		{UserID: "u1", ItemID: "i2", Rating: 1, Timestamp: t0},
		{UserID: "u2", ItemID: "i1", Rating: 1, Timestamp: t0},
		{UserID: "u2", ItemID: "i3", Rating: 1, Timestamp: t0},
	}
}

func fitted(t *testing.T, cfg Config, records []Interaction) *SAR {
	t.Helper()
	model, err := NewSAR(cfg)
	if err != nil {
		t.Fatalf("NewSAR() error = %v", err)
	}
	if err := model.Fit(records); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return model
}

func TestNewSARValidatesEagerly(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unsupported mode", func(c *Config) { c.Similarity = "cosine" }, ErrUnsupportedSimilarity},
		{"zero decay", func(c *Config) { c.TimeDecayCoefficient = 0 }, ErrInvalidDecay},
		{"negative decay", func(c *Config) { c.TimeDecayCoefficient = -1 }, ErrInvalidDecay},
		{"infinite decay", func(c *Config) { c.TimeDecayCoefficient = math.Inf(1) }, ErrInvalidDecay},
		{"NaN reference", func(c *Config) { ref := math.NaN(); c.ReferenceTime = &ref }, ErrInvalidDecay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewSAR(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSAR() error = %v, want %v", err, tt.wantErr)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error type = %T, want *ConfigError", err)
			}
		})
	}

	t.Run("mode is normalized", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Similarity = " LIFT "
		model, err := NewSAR(cfg)
		if err != nil {
			t.Fatalf("NewSAR() error = %v", err)
		}
		if got := model.Config().Similarity; got != SimilarityLift {
			t.Errorf("Similarity = %q, want lift", got)
		}
	})
}

func TestSARLifecycle(t *testing.T) {
	model, err := NewSAR(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSAR() error = %v", err)
	}
	if model.State() != StateUntrained {
		t.Errorf("State() = %v, want untrained", model.State())
	}

	_, err = model.Recommend([]string{"u1"}, 1, true)
	if !errors.Is(err, ErrNotFitted) {
		t.Errorf("Recommend() before Fit error = %v, want ErrNotFitted", err)
	}
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Errorf("error type = %T, want *StateError", err)
	}
	if _, err := model.SimilarItems("i1", 1); !errors.Is(err, ErrNotFitted) {
		t.Errorf("SimilarItems() before Fit error = %v, want ErrNotFitted", err)
	}
	if model.Snapshot() != nil {
		t.Error("Snapshot() != nil before Fit")
	}

	// A failed fit leaves the model untrained.
	if err := model.Fit(nil); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("Fit(nil) error = %v, want ErrMalformedRecord", err)
	}
	if model.State() != StateUntrained {
		t.Errorf("State() after failed Fit = %v, want untrained", model.State())
	}

	if err := model.Fit(fourInteractions()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if model.State() != StateTrained {
		t.Errorf("State() = %v, want trained", model.State())
	}

	before := model.Snapshot()
	if err := model.Fit(fourInteractions()); !errors.Is(err, ErrAlreadyFitted) {
		t.Errorf("second Fit() error = %v, want ErrAlreadyFitted", err)
	}
	if model.Snapshot() != before {
		t.Error("second Fit() replaced the fitted snapshot")
	}
}

func TestRecommendScenario(t *testing.T) {
	model := fitted(t, noDecay(), fourInteractions())

	recs, err := model.Recommend([]string{"u1"}, 1, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Recommend() returned %d rows, want 1", len(recs))
	}
	if recs[0].ItemID == "i1" || recs[0].ItemID == "i2" {
		t.Errorf("Recommend() returned seen item %q", recs[0].ItemID)
	}
	want := Recommendation{UserID: "u1", ItemID: "i3", Score: 0.5}
	if recs[0] != want {
		t.Errorf("Recommend() = %+v, want %+v", recs[0], want)
	}
}

func TestRecommendRanking(t *testing.T) {
	model := fitted(t, noDecay(), fourInteractions())

	t.Run("ties broken by item index then normalized", func(t *testing.T) {
		// u1 scores: i1 1.5, i2 1.5, i3 0.5
		recs, err := model.Recommend([]string{"u1"}, 3, false)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		want := []Recommendation{
			{UserID: "u1", ItemID: "i1", Score: 1},
			{UserID: "u1", ItemID: "i2", Score: 1},
			{UserID: "u1", ItemID: "i3", Score: 0},
		}
		if !reflect.DeepEqual(recs, want) {
			t.Errorf("Recommend() = %+v, want %+v", recs, want)
		}
	})

	t.Run("equal scores pass through", func(t *testing.T) {
		recs, err := model.Recommend([]string{"u1"}, 2, false)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		for _, r := range recs {
			if r.Score != 1.5 {
				t.Errorf("score for %s = %v, want unnormalized 1.5", r.ItemID, r.Score)
			}
		}
	})

	t.Run("grouped in request order", func(t *testing.T) {
		recs, err := model.Recommend([]string{"u2", "u1"}, 2, false)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		users := make([]string, len(recs))
		for k, r := range recs {
			users[k] = r.UserID
		}
		want := []string{"u2", "u2", "u1", "u1"}
		if !reflect.DeepEqual(users, want) {
			t.Errorf("user order = %v, want %v", users, want)
		}
	})

	t.Run("empty request", func(t *testing.T) {
		recs, err := model.Recommend(nil, 5, true)
		if err != nil || len(recs) != 0 {
			t.Errorf("Recommend(nil) = (%v, %v), want empty and nil", recs, err)
		}
	})
}

func TestRecommendShortfall(t *testing.T) {
	records := append(fourInteractions(), Interaction{UserID: "u3", ItemID: "i4", Rating: 1, Timestamp: 1_700_000_000})
	model := fitted(t, noDecay(), records)

	recs, err := model.Recommend([]string{"u1"}, 10, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	// Two unseen items remain: i3 (0.5) and i4 (0, no co-occurrence).
	want := []Recommendation{
		{UserID: "u1", ItemID: "i3", Score: 1},
		{UserID: "u1", ItemID: "i4", Score: 0},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("Recommend() = %+v, want %+v", recs, want)
	}

	all, err := model.Recommend([]string{"u3"}, 10, false)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("without exclusion got %d rows, want every item (4)", len(all))
	}
}

func TestRecommendNeverReturnsSeenItems(t *testing.T) {
	records := []Interaction{}
	users := []string{"a", "b", "c", "d", "e"}
	items := []string{"p", "q", "r", "s", "t", "u"}
	for k, u := range users {
		for m, it := range items {
			if (k+m)%3 == 0 {
				records = append(records, Interaction{UserID: u, ItemID: it, Rating: float64(1 + m%2), Timestamp: float64(k * 3600)})
			}
		}
	}

	for _, mode := range []SimilarityMode{SimilarityJaccard, SimilarityLift} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Similarity = mode
			model := fitted(t, cfg, records)

			seen := map[[2]string]bool{}
			for _, r := range records {
				seen[[2]string{r.UserID, r.ItemID}] = true
			}

			recs, err := model.Recommend(users, len(items), true)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			last := map[string]float64{}
			for _, r := range recs {
				if seen[[2]string{r.UserID, r.ItemID}] {
					t.Errorf("user %s got seen item %s", r.UserID, r.ItemID)
				}
				if prev, ok := last[r.UserID]; ok && r.Score > prev {
					t.Errorf("user %s scores increase: %v after %v", r.UserID, r.Score, prev)
				}
				last[r.UserID] = r.Score
			}
		})
	}
}

func TestRecommendUnknownUserFailsBatch(t *testing.T) {
	model := fitted(t, noDecay(), fourInteractions())

	recs, err := model.Recommend([]string{"u1", "ghost", "u2", "nobody"}, 2, true)
	if recs != nil {
		t.Errorf("Recommend() returned %d rows, want none", len(recs))
	}
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("error = %v, want ErrUnknownUser", err)
	}
	var unknown *UnknownEntityError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownEntityError", err)
	}
	if !reflect.DeepEqual(unknown.IDs, []string{"ghost", "nobody"}) {
		t.Errorf("IDs = %v, want [ghost nobody]", unknown.IDs)
	}
}

func TestRecommendInvalidCount(t *testing.T) {
	model := fitted(t, noDecay(), fourInteractions())
	for _, n := range []int{0, -3} {
		if _, err := model.Recommend([]string{"u1"}, n, true); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("Recommend(n=%d) error = %v, want ErrInvalidCount", n, err)
		}
	}
}

func TestRecommendIdempotentAndConcurrent(t *testing.T) {
	model := fitted(t, DefaultConfig(), fourInteractions())

	first, err := model.Recommend([]string{"u1", "u2"}, 3, true)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			again, err := model.Recommend([]string{"u1", "u2"}, 3, true)
			if err != nil || !reflect.DeepEqual(first, again) {
				errs <- "concurrent Recommend() differed from first call"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}

func TestSimilarItems(t *testing.T) {
	model := fitted(t, noDecay(), fourInteractions())

	got, err := model.SimilarItems("i1", 5)
	if err != nil {
		t.Fatalf("SimilarItems() error = %v", err)
	}
	want := []ItemScore{{ItemID: "i2", Score: 0.5}, {ItemID: "i3", Score: 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SimilarItems(i1) = %+v, want %+v", got, want)
	}

	got, err = model.SimilarItems("i2", 5)
	if err != nil {
		t.Fatalf("SimilarItems() error = %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "i1" {
		t.Errorf("SimilarItems(i2) = %+v, want only i1", got)
	}

	if _, err := model.SimilarItems("zzz", 1); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("SimilarItems(unknown) error = %v, want ErrUnknownItem", err)
	}
}

func TestItemMeans(t *testing.T) {
	model := fitted(t, noDecay(), []Interaction{
		{UserID: "u1", ItemID: "i1", Rating: 2, Timestamp: NoTimestamp},
		{UserID: "u2", ItemID: "i1", Rating: 4, Timestamp: NoTimestamp},
		{UserID: "u1", ItemID: "i2", Rating: 3, Timestamp: NoTimestamp},
		{UserID: "u1", ItemID: "i2", Rating: 1, Timestamp: NoTimestamp},
		{UserID: "u3", ItemID: "i3", Rating: 0, Timestamp: NoTimestamp},
	})

	means, err := model.ItemMeans()
	if err != nil {
		t.Fatalf("ItemMeans() error = %v", err)
	}
	want := map[string]float64{"i1": 3, "i2": 4, "i3": 0}
	if !reflect.DeepEqual(means, want) {
		t.Errorf("ItemMeans() = %v, want %v", means, want)
	}

	users, _ := model.Users()
	if !reflect.DeepEqual(users, []string{"u1", "u2", "u3"}) {
		t.Errorf("Users() = %v", users)
	}
	items, _ := model.Items()
	if !reflect.DeepEqual(items, []string{"i1", "i2", "i3"}) {
		t.Errorf("Items() = %v", items)
	}
}
