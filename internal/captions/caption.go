package captions

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MinDuration is the shortest span, in seconds, any timing edit may produce.
const MinDuration = 0.1

// ErrNotFound reports an edit against a caption id that is not in the store.
var ErrNotFound = errors.New("caption not found")

// ErrInvalid reports a caption whose timing or text cannot be stored.
var ErrInvalid = errors.New("invalid caption")

// Caption is one timed text segment.
type Caption struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns End - Start.
func (c Caption) Duration() float64 {
	return c.End - c.Start
}

// Contains reports whether t falls inside the caption, inclusive on both ends.
func (c Caption) Contains(t float64) bool {
	return c.Start <= t && t <= c.End
}

// Overlaps reports whether the two captions share any span of time.
func (c Caption) Overlaps(other Caption) bool {
	return c.Start < other.End && other.Start < c.End
}

// Validate checks the stored invariants: finite non-negative start, end after start.
func (c Caption) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if math.IsNaN(c.Start) || math.IsInf(c.Start, 0) || math.IsNaN(c.End) || math.IsInf(c.End, 0) {
		return fmt.Errorf("%w: %s has non-finite timing", ErrInvalid, c.ID)
	}
	if c.Start < 0 {
		return fmt.Errorf("%w: %s starts before zero", ErrInvalid, c.ID)
	}
	if c.End <= c.Start {
		return fmt.Errorf("%w: %s ends at %.3f before start %.3f", ErrInvalid, c.ID, c.End, c.Start)
	}
	return nil
}

// Patch carries optional field updates for Store.Update. Nil fields are left alone.
type Patch struct {
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
	Text  *string  `json:"text,omitempty"`
}

// Edge selects the caption boundary for SyncEdge.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// ParseEdge converts user input into an Edge.
func ParseEdge(value string) (Edge, error) {
	switch Edge(strings.ToLower(strings.TrimSpace(value))) {
	case EdgeStart:
		return EdgeStart, nil
	case EdgeEnd:
		return EdgeEnd, nil
	default:
		return "", fmt.Errorf("%w: unknown caption edge %q", ErrInvalid, value)
	}
}
