package editor_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"capgenius/internal/captions"
	"capgenius/internal/config"
	"capgenius/internal/editor"
	"capgenius/internal/media"
	"capgenius/internal/project"
	"capgenius/internal/services"
	"capgenius/internal/srt"
	"capgenius/internal/style"
	"capgenius/internal/testsupport"
	"capgenius/internal/timeline"
	"capgenius/internal/transcribe"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	result  transcribe.Result
	err     error
	block   chan struct{}
	lastReq transcribe.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req transcribe.Request) (transcribe.Result, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	block, result, err := f.block, f.result, f.err
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return transcribe.Result{}, ctx.Err()
		}
	}
	return result, err
}

func (f *fakeGenerator) set(result []captions.Caption, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = transcribe.Result{Captions: result, Language: "en", Provider: "fake"}
	f.err = err
}

func newDeps(cfg *config.Config, gen *fakeGenerator) editor.Deps {
	return editor.Deps{
		Stager:          media.NewStager(cfg, nil),
		Generator:       gen,
		Presets:         style.NewRegistry(),
		Policy:          timeline.DefaultPolicy(),
		PixelsPerSecond: timeline.DefaultPixelsPerSecond,
		DefaultLanguage: "en",
	}
}

func videoUpload(name string) media.Upload {
	payload := testsupport.Payload(2048)
	return media.Upload{Name: name, MimeType: "video/mp4", Size: int64(len(payload)), Body: bytes.NewReader(payload)}
}

func textUpload() media.Upload {
	return media.Upload{Name: "notes.txt", MimeType: "text/plain", Size: 5, Body: strings.NewReader("hello")}
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// loadedSession returns a session with a 10 second video and the given captions.
func loadedSession(t *testing.T, items []captions.Caption) (*editor.Session, *fakeGenerator) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeDuration(10))
	gen := &fakeGenerator{}
	s := editor.NewSession("proj-1", "Test", newDeps(cfg, gen))
	t.Cleanup(func() { _ = s.Close() })

	if err := s.SelectVideo(context.Background(), videoUpload("clip.mp4")); err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}
	if items != nil {
		gen.set(items, nil)
		if err := s.Generate(context.Background(), "en"); err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if err := s.Wait(waitCtx(t)); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	return s, gen
}

func TestSelectVideoRejectsNonVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutFFprobe())
	s := editor.NewSession("p", "Test", newDeps(cfg, &fakeGenerator{}))
	defer s.Close()

	err := s.SelectVideo(context.Background(), textUpload())
	if !errors.Is(err, media.ErrNotVideo) {
		t.Fatalf("expected ErrNotVideo, got %v", err)
	}
	status := s.Status()
	if status.Error != "Please upload a valid video file." {
		t.Fatalf("message = %q", status.Error)
	}
	if status.State != project.StateIdle || status.Video != nil || len(status.Captions) != 0 {
		t.Fatalf("unexpected state change: %+v", status)
	}
}

func TestSelectVideoReleasesPrevious(t *testing.T) {
	s, _ := loadedSession(t, nil)
	first := s.Snapshot().VideoPath

	if err := s.SelectVideo(context.Background(), videoUpload("second.mp4")); err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}
	status := s.Status()
	if status.State != project.StateEditing || status.Video == nil || status.Video.Name != "second.mp4" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Playback.Duration != 10 {
		t.Fatalf("duration = %v, want 10", status.Playback.Duration)
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Fatalf("expected previous video removed, stat err=%v", err)
	}
}

func TestGenerateReplacesCaptions(t *testing.T) {
	items := []captions.Caption{
		{ID: "b", Start: 2, End: 3, Text: "World"},
		{ID: "a", Start: 0, End: 1.5, Text: "Hello"},
	}
	s, gen := loadedSession(t, items)

	got := s.Captions()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected captions %#v", got)
	}
	status := s.Status()
	if status.State != project.StateEditing || status.Error != "" || status.Generating {
		t.Fatalf("unexpected status %+v", status)
	}
	if gen.lastReq.Language != "en" || gen.lastReq.MimeType != "video/mp4" || len(gen.lastReq.Video) != 2048 {
		t.Fatalf("unexpected request %+v", gen.lastReq)
	}
}

func TestFailedGenerationLeavesCaptionsIntact(t *testing.T) {
	items := []captions.Caption{{ID: "a", Start: 0, End: 1.5, Text: "Hello"}}
	s, gen := loadedSession(t, items)

	failure := services.Wrap(services.ErrExternalTool, "transcribe", "request", "gemini request failed",
		fmt.Errorf("%w: quota", transcribe.ErrRequestFailed))
	gen.set(nil, failure)
	if err := s.Generate(context.Background(), "hi-en"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := s.Wait(waitCtx(t)); !errors.Is(err, transcribe.ErrRequestFailed) {
		t.Fatalf("Wait = %v", err)
	}

	if got := s.Captions(); len(got) != 1 || got[0] != items[0] {
		t.Fatalf("captions changed: %#v", got)
	}
	status := s.Status()
	if !strings.HasPrefix(status.Error, editor.GenerationFailedPrefix) {
		t.Fatalf("message = %q", status.Error)
	}
	if status.State != project.StateEditing {
		t.Fatalf("state = %s", status.State)
	}
}

func TestGenerateWhileRunningIsBusyAndCancels(t *testing.T) {
	s, gen := loadedSession(t, nil)
	gen.block = make(chan struct{})

	if err := s.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if s.AppState() != project.StateGenerating {
		t.Fatalf("state = %s", s.AppState())
	}
	err := s.Generate(context.Background(), "en")
	if !errors.Is(err, editor.ErrBusy) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrBusy conflict, got %v", err)
	}
	if err := s.SelectVideo(context.Background(), videoUpload("other.mp4")); !errors.Is(err, editor.ErrBusy) {
		t.Fatalf("expected upload to be refused while generating, got %v", err)
	}

	if !s.CancelGeneration() {
		t.Fatal("expected a generation to cancel")
	}
	if err := s.Wait(waitCtx(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait = %v, want context.Canceled", err)
	}
	status := s.Status()
	if status.State != project.StateEditing || status.Error != "" || status.Generating {
		t.Fatalf("unexpected status after cancel %+v", status)
	}
	if s.CancelGeneration() {
		t.Fatal("nothing should be left to cancel")
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutFFprobe())
	s := editor.NewSession("p", "Test", newDeps(cfg, &fakeGenerator{}))
	defer s.Close()

	if err := s.Generate(context.Background(), "en"); !errors.Is(err, editor.ErrNoVideo) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrNoVideo validation error, got %v", err)
	}
	if err := s.SelectVideo(context.Background(), videoUpload("clip.mp4")); err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}
	if err := s.Generate(context.Background(), "klingon"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected unsupported language, got %v", err)
	}
	if s.AppState() != project.StateEditing {
		t.Fatalf("state = %s", s.AppState())
	}
}

func TestTimelineGesturesThroughSession(t *testing.T) {
	s, _ := loadedSession(t, []captions.Caption{{ID: "c", Start: 2, End: 5, Text: "Drag me"}})
	pps := timeline.DefaultPixelsPerSecond

	started, err := s.PointerDown("c", timeline.ModeStart)
	if err != nil || !started {
		t.Fatalf("PointerDown = %v, %v", started, err)
	}
	if again, _ := s.PointerDown("c", timeline.ModeEnd); again {
		t.Fatal("second pointer down should be ignored")
	}
	step, err := s.PointerMove(editor.Pointer{X: 6 * pps})
	if err != nil {
		t.Fatalf("PointerMove: %v", err)
	}
	if step.Bounds.Start != 4.9 || step.Bounds.End != 5 {
		t.Fatalf("start clamp = %+v, want 4.9..5", step.Bounds)
	}
	if pos, ok := s.Click(editor.Pointer{X: pps}); ok || pos != 0 {
		t.Fatalf("click during drag = %v, %v", pos, ok)
	}
	if _, err := s.PointerUp(); err != nil {
		t.Fatalf("PointerUp: %v", err)
	}

	if _, err := s.PointerDown("c", timeline.ModeMove); err != nil {
		t.Fatalf("PointerDown move: %v", err)
	}
	step, _ = s.PointerMove(editor.Pointer{X: 100 + 20*pps, OriginX: 100})
	if math.Abs(step.Bounds.End-10) > 1e-9 || math.Abs(step.Bounds.Start-9.9) > 1e-9 {
		t.Fatalf("move clamp = %+v", step.Bounds)
	}
	if changed, err := s.PointerCancel(); err != nil || !changed {
		t.Fatalf("PointerCancel = %v, %v", changed, err)
	}
	if got := s.Captions()[0]; got.Start != 4.9 || got.End != 5 {
		t.Fatalf("cancel should restore pre-drag bounds, got %+v", got)
	}

	pos, ok := s.Click(editor.Pointer{X: 3 * pps})
	if !ok || pos != 3 {
		t.Fatalf("Click = %v, %v", pos, ok)
	}
	view := s.Timeline(editor.Pointer{})
	if view.Width != 10*pps || view.Playhead != 3*pps || len(view.Blocks) != 1 {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestSyncToPlayheadKeepsMinimumDuration(t *testing.T) {
	s, _ := loadedSession(t, []captions.Caption{{ID: "c", Start: 2, End: 5, Text: "Sync"}})

	s.Seek(6)
	if err := s.SyncToPlayhead("c", captions.EdgeStart); err != nil {
		t.Fatalf("SyncToPlayhead: %v", err)
	}
	if got := s.Captions()[0]; got.Start != 4.9 || got.End != 5 {
		t.Fatalf("start sync = %+v", got)
	}

	s.Seek(1)
	if err := s.SyncToPlayhead("c", captions.EdgeEnd); err != nil {
		t.Fatalf("SyncToPlayhead: %v", err)
	}
	got := s.Captions()[0]
	if got.End < got.Start+captions.MinDuration-1e-9 {
		t.Fatalf("end sync broke minimum duration: %+v", got)
	}
	if err := s.SyncToPlayhead("missing", captions.EdgeEnd); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := s.SyncToPlayhead("c", captions.Edge("middle")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEditAndDeleteCaptions(t *testing.T) {
	s, _ := loadedSession(t, []captions.Caption{
		{ID: "a", Start: 0, End: 1, Text: "one"},
		{ID: "b", Start: 1, End: 2, Text: "two"},
	})

	if err := s.UpdateText("a", "uno"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if err := s.UpdateText("zzz", "x"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.PointerDown("b", timeline.ModeMove); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	if err := s.DeleteCaption("b"); err != nil {
		t.Fatalf("DeleteCaption: %v", err)
	}
	if s.Status().Drag != nil {
		t.Fatal("deleting the dragged caption should end the drag")
	}
	got := s.Captions()
	if len(got) != 1 || got[0].Text != "uno" {
		t.Fatalf("unexpected captions %#v", got)
	}
}

func TestStyleOperations(t *testing.T) {
	s, _ := loadedSession(t, []captions.Caption{{ID: "a", Start: 1, End: 4, Text: "styled words"}})

	applied, err := s.ApplyPreset("cinematic")
	if err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if applied == style.Default() {
		t.Fatal("preset should change the style")
	}
	if _, err := s.ApplyPreset("Nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	bad := -3.0
	if _, err := s.PatchStyle(style.Patch{FontSize: &bad}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Style() != applied {
		t.Fatal("rejected patch must not change the style")
	}

	upper := true
	if _, err := s.PatchStyle(style.Patch{Uppercase: &upper}); err != nil {
		t.Fatalf("PatchStyle: %v", err)
	}
	frame := s.Frame(2)
	if frame.Caption == nil || frame.Caption.ID != "a" || frame.Overlay == nil {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if frame.Overlay.TextTransform != "uppercase" {
		t.Fatalf("overlay = %+v", frame.Overlay)
	}
	if empty := s.Frame(8); empty.Caption != nil || empty.Overlay != nil {
		t.Fatalf("expected empty frame, got %+v", empty)
	}

	if s.ResetStyle() != style.Default() {
		t.Fatal("ResetStyle should restore defaults")
	}
}

func TestExportSRT(t *testing.T) {
	s, _ := loadedSession(t, nil)
	if _, err := s.ExportSRT(); !errors.Is(err, srt.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}

	s2, _ := loadedSession(t, []captions.Caption{{ID: "a", Start: 1.5, End: 3.25, Text: "Hello"}})
	content, err := s2.ExportSRT()
	if err != nil {
		t.Fatalf("ExportSRT: %v", err)
	}
	if content != "1\n00:00:01,500 --> 00:00:03,250\nHello\n\n" {
		t.Fatalf("unexpected SRT %q", content)
	}
	path, err := s2.ExportFile(t.TempDir(), "")
	if err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != content {
		t.Fatalf("exported file mismatch (err=%v)", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s, gen := loadedSession(t, []captions.Caption{{ID: "a", Start: 1, End: 2, Text: "kept"}})
	s.Seek(1.5)
	if _, err := s.ApplyPreset("Reels Pro"); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	rec := s.Snapshot()
	if rec.VideoPath == "" || rec.State != project.StateEditing || rec.Position != 1.5 {
		t.Fatalf("unexpected snapshot %+v", rec)
	}

	cfg := testsupport.NewConfig(t, testsupport.WithoutFFprobe())
	restored, err := editor.Restore(&rec, newDeps(cfg, gen))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	status := restored.Status()
	if status.Style != s.Style() || len(status.Captions) != 1 || status.Playback.Current != 1.5 || status.Playback.Duration != 10 {
		t.Fatalf("restored status mismatch %+v", status)
	}
	if status.Video == nil || status.State != project.StateEditing {
		t.Fatalf("expected restored video, got %+v", status)
	}

	rec.VideoPath = rec.VideoPath + ".gone"
	rec.State = project.StateGenerating
	rec.Captions = nil
	orphan, err := editor.Restore(&rec, newDeps(cfg, gen))
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if orphan.Status().Video != nil || orphan.AppState() != project.StateIdle {
		t.Fatalf("missing video should restore idle, got %+v", orphan.Status())
	}
}

func TestCloseReleasesVideoAndRejectsWork(t *testing.T) {
	s, gen := loadedSession(t, nil)
	path := s.Snapshot().VideoPath
	gen.block = make(chan struct{})
	if err := s.Generate(context.Background(), "en"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected video released, stat err=%v", err)
	}
	if s.Generating() {
		t.Fatal("generation should have stopped")
	}
	if err := s.UpdateText("a", "x"); !errors.Is(err, editor.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
