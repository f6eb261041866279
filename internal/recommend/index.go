// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package recommend

// Index is a bijection between identifiers and dense zero-based positions,
// assigned in order of first appearance.
type Index struct {
	ids []string
	pos map[string]int
}

func newIndex(capacity int) *Index {
	return &Index{
		ids: make([]string, 0, capacity),
		pos: make(map[string]int, capacity),
	}
}

// add returns the position of id, assigning the next one if id is new.
func (x *Index) add(id string) int {
	if p, ok := x.pos[id]; ok {
		return p
	}
	p := len(x.ids)
	x.ids = append(x.ids, id)
	x.pos[id] = p
	return p
}

// Len returns the number of identifiers.
func (x *Index) Len() int { return len(x.ids) }

// Position returns the index of id and whether it is known.
func (x *Index) Position(id string) (int, bool) {
	p, ok := x.pos[id]
	return p, ok
}

// ID returns the identifier at position p.
func (x *Index) ID(p int) string { return x.ids[p] }

// IDs returns a copy of all identifiers in index order.
func (x *Index) IDs() []string {
	out := make([]string, len(x.ids))
	copy(out, x.ids)
	return out
}
