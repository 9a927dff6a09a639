package srt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cue is one parsed subtitle block.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// DurationToleranceSeconds is how far the last cue may end from the video
// duration before Validate flags a mismatch.
const DurationToleranceSeconds = 5.0

// ParseTimestamp reads HH:MM:SS,mmm (a period is accepted in place of the comma).
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if minutes > 59 || seconds > 59 || millis > 999 || hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("timestamp out of range %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// Parse splits SRT content into cues. Blocks without a timing line are skipped.
func Parse(content string) ([]Cue, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}
	var cues []Cue
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		timing := 1
		if strings.Contains(lines[0], "-->") {
			timing = 0
		}
		parts := strings.Split(lines[timing], "-->")
		if len(parts) != 2 {
			continue
		}
		start, err := ParseTimestamp(parts[0])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", len(cues)+1, err)
		}
		end, err := ParseTimestamp(parts[1])
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", len(cues)+1, err)
		}
		index := len(cues) + 1
		if timing == 1 {
			if n, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
				index = n
			}
		}
		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(lines[timing+1:], "\n"),
		})
	}
	return cues, nil
}

// Validate checks SRT content for format issues. An empty result means the
// content passed. videoSeconds enables the duration check when positive.
func Validate(content string, videoSeconds float64) []string {
	cues, err := Parse(content)
	if err != nil {
		return []string{fmt.Sprintf("timestamp_parse_error: %v", err)}
	}
	if len(cues) == 0 {
		return []string{"empty_subtitle_file"}
	}

	var issues []string
	var last float64
	for i, cue := range cues {
		if cue.End <= cue.Start {
			issues = append(issues, fmt.Sprintf("non_positive_duration: cue=%d", cue.Index))
		}
		if i > 0 && cue.Start < cues[i-1].Start {
			issues = append(issues, fmt.Sprintf("out_of_order: cue=%d", cue.Index))
		}
		if cue.Index != i+1 {
			issues = append(issues, fmt.Sprintf("bad_sequence: cue=%d want=%d", cue.Index, i+1))
		}
		if strings.TrimSpace(cue.Text) == "" {
			issues = append(issues, fmt.Sprintf("empty_text: cue=%d", cue.Index))
		}
		last = math.Max(last, cue.End)
	}

	if videoSeconds > 0 {
		delta := videoSeconds - last
		if delta < -DurationToleranceSeconds {
			issues = append(issues, fmt.Sprintf("duration_mismatch: delta=%.1fs", delta))
		}
	}
	return issues
}
