package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"capgenius/internal/captions"
)

// DefaultFilename is the name of exported subtitle files.
const DefaultFilename = "Premiere_Captions.srt"

// ContentType is served with SRT downloads.
const ContentType = "text/plain; charset=utf-8"

// Render serializes items in the order given. Callers pass the store's sorted
// list. An empty slice renders as "".
func Render(items []captions.Caption) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range items {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(c.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(c.End))
		b.WriteByte('\n')
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Each field is floored
// from the float value on its own, so 2.3 renders as 00:00:02,299 and nothing
// rolls over into the next second. Negative and non-finite values render as
// zero.
func FormatTimestamp(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	hours := math.Floor(seconds / 3600)
	mins := math.Floor(math.Mod(seconds, 3600) / 60)
	secs := math.Floor(math.Mod(seconds, 60))
	ms := math.Floor(math.Mod(seconds, 1) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", int64(hours), int64(mins), int64(secs), int64(ms))
}
