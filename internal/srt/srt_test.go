package srt_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capgenius/internal/captions"
	"capgenius/internal/srt"
)

func TestRenderSingleCaption(t *testing.T) {
	got := srt.Render([]captions.Caption{{ID: "x", Start: 1.5, End: 3.25, Text: "Hello"}})
	want := "1\n00:00:01,500 --> 00:00:03,250\nHello\n\n"
	if got != want {
		t.Fatalf("Render mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRenderEmptyIsEmpty(t *testing.T) {
	if got := srt.Render(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{0.3, "00:00:00,300"},
		{59.9999, "00:00:59,999"},
		{61.25, "00:01:01,250"},
		{3725.0079, "01:02:05,007"},
		{2.3, "00:00:02,299"},
		{1.15, "00:00:01,149"},
		{4.35, "00:00:04,349"},
		{59.9999999999, "00:00:59,999"},
		{3599.9999, "00:59:59,999"},
		{-4, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := srt.FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRoundTripsRenderedContent(t *testing.T) {
	items := []captions.Caption{
		{ID: "a", Start: 0.5, End: 1.75, Text: "First line"},
		{ID: "b", Start: 2, End: 4.125, Text: "Second"},
	}
	cues, err := srt.Parse(srt.Render(items))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[1].Index != 2 || cues[1].Start != 2 || cues[1].End != 4.125 || cues[1].Text != "Second" {
		t.Fatalf("unexpected cue: %+v", cues[1])
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "00:00:01", "aa:bb:cc,ddd", "00:61:00,000"} {
		if _, err := srt.ParseTimestamp(value); err == nil {
			t.Errorf("expected error for %q", value)
		}
	}
	if got, err := srt.ParseTimestamp("00:00:02.500"); err != nil || got != 2.5 {
		t.Fatalf("expected 2.5 from period separator, got %v %v", got, err)
	}
}

func TestValidateFlagsIssues(t *testing.T) {
	if issues := srt.Validate("", 0); len(issues) != 1 || issues[0] != "empty_subtitle_file" {
		t.Fatalf("unexpected issues for empty content: %v", issues)
	}

	good := srt.Render([]captions.Caption{{ID: "a", Start: 1, End: 2, Text: "ok"}})
	if issues := srt.Validate(good, 10); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}

	bad := "1\n00:00:05,000 --> 00:00:04,000\nbackwards\n\n3\n00:00:01,000 --> 00:01:00,000\n \n\n"
	issues := strings.Join(srt.Validate(bad, 20), ",")
	for _, want := range []string{"non_positive_duration", "out_of_order", "bad_sequence", "empty_text", "duration_mismatch"} {
		if !strings.Contains(issues, want) {
			t.Fatalf("expected %s in %s", want, issues)
		}
	}
}

func TestExportWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	items := []captions.Caption{{ID: "a", Start: 1.5, End: 3.25, Text: "Hello"}}
	path, err := srt.Export(items, dir, "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(path) != srt.DefaultFilename {
		t.Fatalf("unexpected file name: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != srt.Render(items) {
		t.Fatalf("unexpected export content: %q", data)
	}
}

func TestExportEmptyCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	if _, err := srt.Export(nil, dir, "out.srt"); !errors.Is(err, srt.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files, found %d", len(entries))
	}
}

func TestExportRejectsNestedFilename(t *testing.T) {
	items := []captions.Caption{{ID: "a", Start: 0, End: 1, Text: "x"}}
	if _, err := srt.Export(items, t.TempDir(), "../escape.srt"); err == nil {
		t.Fatal("expected error for nested filename")
	}
}
