package playback_test

import (
	"math"
	"testing"

	"capgenius/internal/playback"
)

func TestSeekClampsToDuration(t *testing.T) {
	var clock playback.Clock
	if !clock.SetDuration(30) {
		t.Fatal("expected duration to be accepted")
	}
	if got := clock.Seek(45); got != 30 {
		t.Fatalf("expected clamp to 30, got %v", got)
	}
	if got := clock.Seek(-2); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := clock.Tick(12.5); got != 12.5 {
		t.Fatalf("expected tick to 12.5, got %v", got)
	}
}

func TestSetDurationIgnoresInvalidValues(t *testing.T) {
	var clock playback.Clock
	clock.SetDuration(10)
	for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if clock.SetDuration(d) {
			t.Fatalf("expected %v to be rejected", d)
		}
	}
	if clock.Duration() != 10 {
		t.Fatalf("duration changed: %v", clock.Duration())
	}
}

func TestShorterDurationPullsPositionBack(t *testing.T) {
	var clock playback.Clock
	clock.SetDuration(60)
	clock.Seek(50)
	clock.SetDuration(20)
	if clock.Current() != 20 {
		t.Fatalf("expected position 20, got %v", clock.Current())
	}
	clock.Reset()
	if state := clock.State(); state.Current != 0 || state.Duration != 0 {
		t.Fatalf("expected reset state, got %+v", state)
	}
}
