package playback

import "math"

// Clock mirrors the playback position and duration of the loaded video, in
// seconds. The zero value has no duration and rests at 0.
type Clock struct {
	current  float64
	duration float64
}

// State is a snapshot of the clock.
type State struct {
	Current  float64 `json:"current_time"`
	Duration float64 `json:"duration"`
}

// Current returns the playback position.
func (c *Clock) Current() float64 {
	return c.current
}

// Duration returns the media duration, 0 when unknown.
func (c *Clock) Duration() float64 {
	return c.duration
}

// State returns the current position and duration.
func (c *Clock) State() State {
	return State{Current: c.current, Duration: c.duration}
}

// SetDuration records the media duration. Non-positive or non-finite values
// are ignored. The position is pulled back inside the new range.
func (c *Clock) SetDuration(d float64) bool {
	if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return false
	}
	c.duration = d
	c.current = c.clamp(c.current)
	return true
}

// Seek jumps to t, clamped to [0, duration], and returns the new position.
func (c *Clock) Seek(t float64) float64 {
	c.current = c.clamp(t)
	return c.current
}

// Tick mirrors the position reported by the media element.
func (c *Clock) Tick(t float64) float64 {
	return c.Seek(t)
}

// Reset clears position and duration, used when the video is replaced.
func (c *Clock) Reset() {
	c.current = 0
	c.duration = 0
}

func (c *Clock) clamp(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if c.duration > 0 && t > c.duration {
		return c.duration
	}
	return t
}
