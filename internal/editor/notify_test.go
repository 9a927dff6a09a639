package editor_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"capgenius/internal/captions"
	"capgenius/internal/editor"
	"capgenius/internal/services"
	"capgenius/internal/testsupport"
	"capgenius/internal/transcribe"
)

type notice struct {
	project  string
	captions int
	lang     string
	reason   string
	failed   bool
}

type fakeNotifier struct {
	sent chan notice
}

func (f *fakeNotifier) GenerationCompleted(_ context.Context, project string, count int, lang string) error {
	f.sent <- notice{project: project, captions: count, lang: lang}
	return nil
}

func (f *fakeNotifier) GenerationFailed(_ context.Context, project, reason string) error {
	f.sent <- notice{project: project, reason: reason, failed: true}
	return nil
}

func (f *fakeNotifier) next(t *testing.T) notice {
	t.Helper()
	select {
	case n := <-f.sent:
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("no notification sent")
		return notice{}
	}
}

func TestGenerationOutcomesAreNotified(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeDuration(10))
	gen := &fakeGenerator{}
	notifier := &fakeNotifier{sent: make(chan notice, 4)}
	deps := newDeps(cfg, gen)
	deps.Notifier = notifier
	s := editor.NewSession("proj-1", "Launch teaser", deps)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.SelectVideo(context.Background(), videoUpload("clip.mp4")); err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}

	gen.set([]captions.Caption{{ID: "a", Start: 0, End: 1, Text: "Hi"}}, nil)
	if err := s.Generate(context.Background(), "es"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := s.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := notifier.next(t); got.failed || got.project != "Launch teaser" || got.captions != 1 || got.lang != "es" {
		t.Fatalf("unexpected completion notice: %+v", got)
	}

	gen.set(nil, services.Wrap(services.ErrExternalTool, "transcribe", "request", "gemini request failed",
		fmt.Errorf("%w: quota", transcribe.ErrRequestFailed)))
	if err := s.Generate(context.Background(), "en"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_ = s.Wait(waitCtx(t))
	got := notifier.next(t)
	if !got.failed || got.reason == "" {
		t.Fatalf("unexpected failure notice: %+v", got)
	}
}

func TestCancelledGenerationIsNotNotified(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeDuration(10))
	gen := &fakeGenerator{block: make(chan struct{})}
	notifier := &fakeNotifier{sent: make(chan notice, 1)}
	deps := newDeps(cfg, gen)
	deps.Notifier = notifier
	s := editor.NewSession("proj-1", "Demo", deps)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.SelectVideo(context.Background(), videoUpload("clip.mp4")); err != nil {
		t.Fatalf("SelectVideo: %v", err)
	}
	if err := s.Generate(context.Background(), "en"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !s.CancelGeneration() {
		t.Fatal("expected a running generation")
	}
	_ = s.Wait(waitCtx(t))

	select {
	case n := <-notifier.sent:
		t.Fatalf("unexpected notification for cancelled generation: %+v", n)
	case <-time.After(100 * time.Millisecond):
	}
}
