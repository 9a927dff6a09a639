package editor

import (
	"capgenius/internal/captions"
	"capgenius/internal/logging"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
)

// Pointer is the screen geometry that accompanies a timeline gesture.
type Pointer struct {
	X       float64 `json:"x"`
	OriginX float64 `json:"origin_x"`
	Scroll  float64 `json:"scroll"`
}

// UpdateText replaces the text of caption id.
func (s *Session) UpdateText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return classify("update text", ErrClosed)
	}
	return classify("update text", s.store.Update(id, captions.Patch{Text: &text}))
}

// DeleteCaption removes caption id. A drag on that caption ends.
func (s *Session) DeleteCaption(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return classify("delete caption", ErrClosed)
	}
	if err := s.store.Delete(id); err != nil {
		return classify("delete caption", err)
	}
	if drag, ok := s.engine.Active(); ok && drag.CaptionID == id {
		s.engine.Reset()
	}
	s.logger.Debug("caption deleted", logging.String(logging.FieldCaptionID, id))
	return nil
}

// SyncToPlayhead moves one edge of caption id to the playback position,
// keeping the minimum duration.
func (s *Session) SyncToPlayhead(id string, edge captions.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return classify("sync caption", ErrClosed)
	}
	parsed, err := captions.ParseEdge(string(edge))
	if err != nil {
		return classify("sync caption", err)
	}
	return classify("sync caption", s.store.SyncEdgeWithMin(id, parsed, s.clock.Current(), s.engine.Policy().MinDuration))
}

// track builds the timeline geometry for p. Caller holds the lock.
func (s *Session) track(p Pointer) timeline.Track {
	return timeline.Track{
		OriginX:         p.OriginX,
		ScrollOffset:    p.Scroll,
		PixelsPerSecond: s.deps.PixelsPerSecond,
		Duration:        s.clock.Duration(),
	}
}

// PointerDown starts a drag on caption id. A second press while a drag is
// active is ignored and reports false.
func (s *Session) PointerDown(id string, mode timeline.Mode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, classify("pointer down", ErrClosed)
	}
	started, err := s.engine.PointerDown(s.store, id, mode)
	return started, classify("pointer down", err)
}

// PointerMove applies one drag step.
func (s *Session) PointerMove(p Pointer) (timeline.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return timeline.Step{}, classify("pointer move", ErrClosed)
	}
	step, err := s.engine.PointerMove(s.store, s.track(p), p.X)
	return step, classify("pointer move", err)
}

// PointerUp ends the drag and reports whether buffered bounds were committed.
func (s *Session) PointerUp() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, classify("pointer up", ErrClosed)
	}
	committed, err := s.engine.PointerUp(s.store)
	return committed, classify("pointer up", err)
}

// PointerCancel abandons the drag after lost pointer capture.
func (s *Session) PointerCancel() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, classify("pointer cancel", ErrClosed)
	}
	changed, err := s.engine.Cancel(s.store)
	return changed, classify("pointer cancel", err)
}

// Click seeks to the clicked time unless a drag is active. It returns the new
// position and whether the click was honoured.
func (s *Session) Click(p Pointer) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.clock.Current(), false
	}
	target, ok := s.engine.Click(s.track(p), p.X)
	if !ok {
		return s.clock.Current(), false
	}
	return s.clock.Seek(target), true
}

// Seek moves the playhead, clamped to the video duration.
func (s *Session) Seek(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Seek(t)
}

// Tick mirrors the position reported by the client's media element.
func (s *Session) Tick(t float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.Tick(t)
}

// Style returns the current caption style.
func (s *Session) Style() style.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// ApplyPreset merges the named preset over the current style.
func (s *Session) ApplyPreset(name string) (style.Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.style, classify("apply preset", ErrClosed)
	}
	preset, err := s.deps.Presets.Get(name)
	if err != nil {
		return s.style, classify("apply preset", err)
	}
	return s.applyPatch("apply preset", preset.Patch)
}

// PatchStyle merges p over the current style. An invalid result is rejected
// and the style is left unchanged.
func (s *Session) PatchStyle(p style.Patch) (style.Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.style, classify("patch style", ErrClosed)
	}
	return s.applyPatch("patch style", p)
}

func (s *Session) applyPatch(op string, p style.Patch) (style.Style, error) {
	next := s.style.Apply(p)
	if err := next.Validate(); err != nil {
		return s.style, classify(op, err)
	}
	s.style = next
	return s.style, nil
}

// ResetStyle restores the default style.
func (s *Session) ResetStyle() style.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = style.Default()
	return s.style
}
