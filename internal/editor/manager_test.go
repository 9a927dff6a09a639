package editor_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"capgenius/internal/captions"
	"capgenius/internal/editor"
	"capgenius/internal/project"
	"capgenius/internal/services"
	"capgenius/internal/testsupport"
)

func TestManagerPersistsAfterUpdate(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeDuration(8))
	store := testsupport.MustOpenStore(t, cfg)
	gen := &fakeGenerator{}
	deps := newDeps(cfg, gen)
	manager := editor.NewManager(store, deps)
	ctx := context.Background()

	s, err := manager.Create(ctx, "Launch reel")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := manager.Update(ctx, s.ID(), func(s *editor.Session) error {
		return s.SelectVideo(ctx, videoUpload("clip.mp4"))
	}); err != nil {
		t.Fatalf("Update(select video): %v", err)
	}

	gen.set([]captions.Caption{{ID: "a", Start: 0.5, End: 1.5, Text: "persisted"}}, nil)
	if err := manager.Update(ctx, s.ID(), func(s *editor.Session) error {
		return s.Generate(ctx, "es")
	}); err != nil {
		t.Fatalf("Update(generate): %v", err)
	}
	if err := s.Wait(waitCtx(t)); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	rec, err := store.Get(ctx, s.ID())
	if err != nil || rec == nil {
		t.Fatalf("store.Get: %v %v", rec, err)
	}
	if rec.State != project.StateEditing || len(rec.Captions) != 1 || rec.Language != "es" {
		t.Fatalf("generation result not persisted: %+v", rec)
	}
	if rec.VideoName != "clip.mp4" || rec.Duration != 8 {
		t.Fatalf("video not persisted: %+v", rec)
	}

	summaries, err := manager.List(ctx)
	if err != nil || len(summaries) != 1 || summaries[0].Captions != 1 {
		t.Fatalf("List = %+v, %v", summaries, err)
	}
}

func TestManagerRestoresAfterClose(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFprobeDuration(8))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := editor.NewManager(store, newDeps(cfg, &fakeGenerator{}))
	s, err := first.Create(ctx, "Resume me")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := first.Update(ctx, s.ID(), func(s *editor.Session) error {
		if err := s.SelectVideo(ctx, videoUpload("clip.mp4")); err != nil {
			return err
		}
		s.Seek(4)
		return nil
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	videoPath := s.Snapshot().VideoPath
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(videoPath); err != nil {
		t.Fatalf("suspended session should keep its video: %v", err)
	}
	if _, err := first.Get(ctx, s.ID()); !errors.Is(err, editor.ErrClosed) {
		t.Fatalf("closed manager Get = %v", err)
	}

	second := editor.NewManager(store, newDeps(cfg, &fakeGenerator{}))
	defer second.Close()
	restored, err := second.Get(ctx, s.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	status := restored.Status()
	if status.Name != "Resume me" || status.Video == nil || status.Playback.Current != 4 {
		t.Fatalf("unexpected restored status %+v", status)
	}
	again, _ := second.Get(ctx, s.ID())
	if again != restored {
		t.Fatal("expected the cached session")
	}
}

func TestManagerDeleteReleasesVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutFFprobe())
	store := testsupport.MustOpenStore(t, cfg)
	manager := editor.NewManager(store, newDeps(cfg, &fakeGenerator{}))
	defer manager.Close()
	ctx := context.Background()

	s, err := manager.Create(ctx, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := manager.Update(ctx, s.ID(), func(s *editor.Session) error {
		return s.SelectVideo(ctx, videoUpload("clip.mp4"))
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	videoPath := s.Snapshot().VideoPath

	if err := manager.Delete(ctx, s.ID()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(videoPath); !os.IsNotExist(err) {
		t.Fatalf("expected video removed, stat err=%v", err)
	}
	if _, err := manager.Get(ctx, s.ID()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := manager.Delete(ctx, s.ID()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestManagerUpdatePersistsRejectedUploadMessage(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutFFprobe())
	store := testsupport.MustOpenStore(t, cfg)
	manager := editor.NewManager(store, newDeps(cfg, &fakeGenerator{}))
	defer manager.Close()
	ctx := context.Background()

	s, _ := manager.Create(ctx, "x")
	err := manager.Update(ctx, s.ID(), func(s *editor.Session) error {
		return s.SelectVideo(ctx, textUpload())
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	rec, _ := store.Get(ctx, s.ID())
	if rec.ErrorMessage != "Please upload a valid video file." || rec.State != project.StateIdle {
		t.Fatalf("unexpected record %+v", rec)
	}
}
