package captions

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Store is an ordered caption collection. The zero value is an empty store.
type Store struct {
	items []Caption
}

// NewStore returns a store holding a sorted copy of items.
func NewStore(items []Caption) *Store {
	s := &Store{}
	s.ReplaceAll(items)
	return s
}

// Len returns the number of captions.
func (s *Store) Len() int {
	return len(s.items)
}

// List returns a copy of the captions in start order.
func (s *Store) List() []Caption {
	return slices.Clone(s.items)
}

// Get returns the caption with id.
func (s *Store) Get(id string) (Caption, bool) {
	idx := s.index(id)
	if idx < 0 {
		return Caption{}, false
	}
	return s.items[idx], true
}

// ReplaceAll discards the collection and installs items, sorted by start.
func (s *Store) ReplaceAll(items []Caption) {
	s.items = slices.Clone(items)
	s.sort()
}

// Update applies the set fields of patch to the caption with id, then re-sorts.
// Timing fields are stored as given; callers that derive timing from gestures
// apply the minimum duration floor first (see SyncEdge and the timeline engine).
func (s *Store) Update(id string, patch Patch) error {
	idx := s.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := s.items[idx]
	if patch.Start != nil {
		next.Start = *patch.Start
	}
	if patch.End != nil {
		next.End = *patch.End
	}
	if patch.Text != nil {
		next.Text = *patch.Text
	}
	if patch.Start != nil || patch.End != nil {
		if err := next.Validate(); err != nil {
			return err
		}
	}
	s.items[idx] = next
	s.sort()
	return nil
}

// SetBounds replaces both timing fields of a caption.
func (s *Store) SetBounds(id string, start, end float64) error {
	return s.Update(id, Patch{Start: &start, End: &end})
}

// Delete removes the caption with id.
func (s *Store) Delete(id string) error {
	idx := s.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	return nil
}

// SyncEdge moves one boundary of a caption to t while keeping the caption at
// least MinDuration long: start = min(t, end-MinDuration), end = max(t, start+MinDuration).
func (s *Store) SyncEdge(id string, edge Edge, t float64) error {
	return s.SyncEdgeWithMin(id, edge, t, MinDuration)
}

// SyncEdgeWithMin is SyncEdge with a configurable duration floor.
func (s *Store) SyncEdgeWithMin(id string, edge Edge, t, minDuration float64) error {
	c, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	start, end := ClampEdge(c, edge, t, minDuration)
	return s.SetBounds(id, start, end)
}

// ClampEdge computes the new bounds of c when edge is moved to t.
func ClampEdge(c Caption, edge Edge, t, minDuration float64) (float64, float64) {
	switch edge {
	case EdgeStart:
		return math.Max(0, math.Min(t, c.End-minDuration)), c.End
	default:
		return c.Start, math.Max(t, c.Start+minDuration)
	}
}

// ActiveAt returns every caption whose span contains t, in start order.
func (s *Store) ActiveAt(t float64) []Caption {
	var active []Caption
	for _, c := range s.items {
		if c.Contains(t) {
			active = append(active, c)
		}
	}
	return active
}

// FirstActiveAt returns the first caption in start order whose span contains t.
func (s *Store) FirstActiveAt(t float64) (Caption, bool) {
	for _, c := range s.items {
		if c.Contains(t) {
			return c, true
		}
	}
	return Caption{}, false
}

// OverlapsOthers reports whether the span [start, end] would overlap any
// caption other than id.
func (s *Store) OverlapsOthers(id string, start, end float64) bool {
	probe := Caption{ID: id, Start: start, End: end}
	for _, c := range s.items {
		if c.ID != id && c.Overlaps(probe) {
			return true
		}
	}
	return false
}

func (s *Store) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].Start < s.items[j].Start
	})
}
