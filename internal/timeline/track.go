package timeline

import (
	"math"

	"capgenius/internal/captions"
)

// DefaultPixelsPerSecond is the timeline zoom level.
const DefaultPixelsPerSecond = 60.0

// Track describes the rendered timeline: where it starts on screen, how far it
// is scrolled, its zoom, and the media duration it spans.
type Track struct {
	OriginX         float64 `json:"origin_x"`
	ScrollOffset    float64 `json:"scroll"`
	PixelsPerSecond float64 `json:"pixels_per_second"`
	Duration        float64 `json:"duration"`
}

// Block is the layout of one caption on the timeline.
type Block struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Active bool    `json:"active"`
}

// View is the full timeline view model.
type View struct {
	Width    float64 `json:"width"`
	Playhead float64 `json:"playhead"`
	Blocks   []Block `json:"blocks"`
}

func (t Track) pps() float64 {
	if t.PixelsPerSecond <= 0 || math.IsNaN(t.PixelsPerSecond) {
		return DefaultPixelsPerSecond
	}
	return t.PixelsPerSecond
}

// TimeAt converts a pointer x coordinate into seconds, clamped to [0, duration].
func (t Track) TimeAt(pointerX float64) float64 {
	sec := (pointerX - t.OriginX + t.ScrollOffset) / t.pps()
	if math.IsNaN(sec) || sec < 0 {
		return 0
	}
	if sec > t.Duration {
		return math.Max(0, t.Duration)
	}
	return sec
}

// XOf converts seconds to a horizontal offset in timeline content coordinates.
func (t Track) XOf(sec float64) float64 {
	return sec * t.pps()
}

// Width is the pixel width of the whole timeline.
func (t Track) Width() float64 {
	return t.XOf(math.Max(0, t.Duration))
}

// Blocks lays out every caption; captions containing current are flagged active.
func (t Track) Blocks(items []captions.Caption, current float64) []Block {
	blocks := make([]Block, 0, len(items))
	for _, c := range items {
		blocks = append(blocks, Block{
			ID:     c.ID,
			Text:   c.Text,
			Start:  c.Start,
			End:    c.End,
			Left:   t.XOf(c.Start),
			Width:  t.XOf(c.Duration()),
			Active: c.Contains(current),
		})
	}
	return blocks
}

// View builds the timeline view model for the given captions and playhead.
func (t Track) View(items []captions.Caption, current float64) View {
	return View{
		Width:    t.Width(),
		Playhead: t.XOf(current),
		Blocks:   t.Blocks(items, current),
	}
}
