package timeline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"capgenius/internal/captions"
)

var (
	// ErrOverlap reports a drag step rejected because it would overlap another caption.
	ErrOverlap = errors.New("caption would overlap another caption")
	// ErrUnknownMode reports an unsupported drag mode.
	ErrUnknownMode = errors.New("unknown drag mode")
)

// Mode selects what a drag changes.
type Mode string

const (
	ModeMove  Mode = "move"
	ModeStart Mode = "start"
	ModeEnd   Mode = "end"
)

// ParseMode converts user input into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeMove:
		return ModeMove, nil
	case ModeStart:
		return ModeStart, nil
	case ModeEnd:
		return ModeEnd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

// CommitMode controls when drag steps reach the caption store.
type CommitMode string

const (
	// CommitLive writes every pointer move to the store.
	CommitLive CommitMode = "live"
	// CommitRelease buffers moves and writes once on PointerUp.
	CommitRelease CommitMode = "release"
)

// Policy configures the engine.
type Policy struct {
	MinDuration      float64
	CommitMode       CommitMode
	RollbackOnCancel bool
	PreventOverlap   bool
}

// DefaultPolicy matches the interactive editor defaults.
func DefaultPolicy() Policy {
	return Policy{
		MinDuration:      captions.MinDuration,
		CommitMode:       CommitLive,
		RollbackOnCancel: true,
	}
}

// Bounds is a caption time span.
type Bounds struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Compute returns the bounds c takes when dragged in mode to time t on a
// timeline of the given duration.
//
//	start: start = min(t, end-min)
//	end:   end = max(t, start+min)
//	move:  start = clamp(0, duration-(end-start), t), length kept
func Compute(c captions.Caption, mode Mode, t, duration, minDuration float64) Bounds {
	switch mode {
	case ModeStart:
		return Bounds{Start: math.Max(0, math.Min(t, c.End-minDuration)), End: c.End}
	case ModeEnd:
		return Bounds{Start: c.Start, End: math.Max(t, c.Start+minDuration)}
	default:
		length := c.End - c.Start
		start := math.Max(0, math.Min(duration-length, t))
		return Bounds{Start: start, End: start + length}
	}
}

// Drag describes the active gesture.
type Drag struct {
	CaptionID string  `json:"caption_id"`
	Mode      Mode    `json:"mode"`
	Original  Bounds  `json:"original"`
	Pending   *Bounds `json:"pending,omitempty"`
	caption   captions.Caption
}

// Step reports the outcome of one pointer move.
type Step struct {
	Bounds    Bounds `json:"bounds"`
	Committed bool   `json:"committed"`
	// Ended is set when the dragged caption disappeared and the drag was dropped.
	Ended bool `json:"ended"`
}

// Engine is the drag state machine. It is not safe for concurrent use.
type Engine struct {
	policy Policy
	drag   *Drag
}

// NewEngine returns an idle engine.
func NewEngine(policy Policy) *Engine {
	if policy.MinDuration <= 0 {
		policy.MinDuration = captions.MinDuration
	}
	if policy.CommitMode == "" {
		policy.CommitMode = CommitLive
	}
	return &Engine{policy: policy}
}

// Policy returns the engine configuration.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Active returns the current drag, if any.
func (e *Engine) Active() (Drag, bool) {
	if e.drag == nil {
		return Drag{}, false
	}
	return *e.drag, true
}

// PointerDown starts a drag on caption id. It returns false without error when
// a drag is already in progress.
func (e *Engine) PointerDown(store *captions.Store, id string, mode Mode) (bool, error) {
	if e.drag != nil {
		return false, nil
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return false, err
	}
	c, ok := store.Get(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", captions.ErrNotFound, id)
	}
	e.drag = &Drag{
		CaptionID: id,
		Mode:      mode,
		Original:  Bounds{Start: c.Start, End: c.End},
		caption:   c,
	}
	return true, nil
}

// PointerMove applies one drag step at pointer x. While idle it does nothing.
func (e *Engine) PointerMove(store *captions.Store, track Track, x float64) (Step, error) {
	if e.drag == nil {
		return Step{}, nil
	}
	current, ok := store.Get(e.drag.CaptionID)
	if !ok {
		e.drag = nil
		return Step{Ended: true}, nil
	}
	base := current
	if e.policy.CommitMode == CommitRelease {
		base = e.drag.caption
		if e.drag.Pending != nil {
			base.Start, base.End = e.drag.Pending.Start, e.drag.Pending.End
		}
	}

	next := Compute(base, e.drag.Mode, track.TimeAt(x), track.Duration, e.policy.MinDuration)
	if e.policy.PreventOverlap && store.OverlapsOthers(e.drag.CaptionID, next.Start, next.End) {
		return Step{Bounds: Bounds{Start: base.Start, End: base.End}}, ErrOverlap
	}

	if e.policy.CommitMode == CommitRelease {
		e.drag.Pending = &next
		return Step{Bounds: next}, nil
	}
	if err := store.SetBounds(e.drag.CaptionID, next.Start, next.End); err != nil {
		return Step{}, err
	}
	return Step{Bounds: next, Committed: true}, nil
}

// PointerUp ends the drag. In release mode the buffered bounds are committed.
func (e *Engine) PointerUp(store *captions.Store) (bool, error) {
	if e.drag == nil {
		return false, nil
	}
	drag := e.drag
	e.drag = nil
	if e.policy.CommitMode != CommitRelease || drag.Pending == nil {
		return false, nil
	}
	if _, ok := store.Get(drag.CaptionID); !ok {
		return false, nil
	}
	if err := store.SetBounds(drag.CaptionID, drag.Pending.Start, drag.Pending.End); err != nil {
		return false, err
	}
	return true, nil
}

// Cancel abandons the drag after lost pointer capture. Buffered steps are
// dropped; with RollbackOnCancel, live edits are reverted to the pre-drag bounds.
// It reports whether the store was changed.
func (e *Engine) Cancel(store *captions.Store) (bool, error) {
	if e.drag == nil {
		return false, nil
	}
	drag := e.drag
	e.drag = nil
	if e.policy.CommitMode == CommitRelease || !e.policy.RollbackOnCancel {
		return false, nil
	}
	current, ok := store.Get(drag.CaptionID)
	if !ok {
		return false, nil
	}
	if current.Start == drag.Original.Start && current.End == drag.Original.End {
		return false, nil
	}
	if err := store.SetBounds(drag.CaptionID, drag.Original.Start, drag.Original.End); err != nil {
		return false, err
	}
	return true, nil
}

// Click converts a click on the track into a seek target. Clicks during a drag
// are ignored.
func (e *Engine) Click(track Track, x float64) (float64, bool) {
	if e.drag != nil {
		return 0, false
	}
	return track.TimeAt(x), true
}

// Reset drops any active drag without touching the store.
func (e *Engine) Reset() {
	e.drag = nil
}
