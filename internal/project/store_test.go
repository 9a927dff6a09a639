package project_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"capgenius/internal/captions"
	"capgenius/internal/project"
	"capgenius/internal/services"
	"capgenius/internal/style"
	"capgenius/internal/testsupport"
)

func TestCreateAndGet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	rec, err := store.Create(ctx, "  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Name != project.DefaultName || rec.State != project.StateIdle {
		t.Fatalf("unexpected new record %+v", rec)
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected record")
	}
	if got.Style != style.Default() {
		t.Fatalf("expected default style, got %+v", got.Style)
	}
	if got.Captions == nil || len(got.Captions) != 0 {
		t.Fatalf("expected empty caption list, got %#v", got.Captions)
	}
	if got.HasVideo() {
		t.Fatal("new project should have no video")
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	rec, err := store.Get(context.Background(), "missing")
	if err != nil || rec != nil {
		t.Fatalf("Get(missing) = %v, %v", rec, err)
	}
}

func TestSaveRoundTripsEditingState(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	rec, err := store.Create(ctx, "Reel")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec.VideoPath = "/tmp/video-1.mp4"
	rec.VideoName = "clip.mp4"
	rec.VideoMime = "video/mp4"
	rec.VideoSize = 2048
	rec.Duration = 12.5
	rec.Position = 3.25
	rec.State = project.StateEditing
	rec.ErrorMessage = "Caption generation failed: quota"
	rec.Language = "hi-en"
	rec.Captions = []captions.Caption{
		{ID: "a", Start: 0, End: 1.5, Text: "Hello"},
		{ID: "b", Start: 1.5, End: 3, Text: "World"},
	}
	rec.Style.FontSize = 48
	rec.Style.Uppercase = true

	before := rec.UpdatedAt
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !rec.UpdatedAt.After(before) {
		t.Fatalf("expected UpdatedAt to advance")
	}

	got, err := store.Get(ctx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.VideoPath != rec.VideoPath || got.VideoSize != 2048 || got.Duration != 12.5 || got.Position != 3.25 {
		t.Fatalf("video fields not persisted: %+v", got)
	}
	if got.State != project.StateEditing || got.ErrorMessage != rec.ErrorMessage || got.Language != "hi-en" {
		t.Fatalf("session fields not persisted: %+v", got)
	}
	if len(got.Captions) != 2 || got.Captions[1] != rec.Captions[1] {
		t.Fatalf("captions not persisted: %#v", got.Captions)
	}
	if got.Style != rec.Style {
		t.Fatalf("style not persisted: %+v", got.Style)
	}
}

func TestSaveMissingIsNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	err := store.Save(context.Background(), &project.Record{ID: "ghost", Name: "x", State: project.StateIdle})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrdersByRecentUpdate(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	first, _ := store.Create(ctx, "first")
	second, _ := store.Create(ctx, "second")
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].ID != first.ID || records[1].ID != second.ID {
		t.Fatalf("unexpected order: %v", []string{records[0].Name, records[1].Name})
	}
	if summary := records[0].Summarize(); summary.Name != "first" || summary.Captions != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestDeleteAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	a, _ := store.Create(ctx, "a")
	b, _ := store.Create(ctx, "b")
	b.State = project.StateEditing
	if err := store.Save(ctx, b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[project.StateIdle] != 1 || stats[project.StateEditing] != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}

	removed, err := store.Delete(ctx, a.ID)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v", removed, err)
	}
	removed, err = store.Delete(ctx, a.ID)
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v", removed, err)
	}

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || health.Total != 1 || health.DBPath != cfg.ProjectDBPath() {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec, _ := store.Create(context.Background(), "persisted")
	_ = store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	got, err := reopened.Get(context.Background(), rec.ID)
	if err != nil || got == nil || got.Name != "persisted" {
		t.Fatalf("Get after reopen = %v, %v", got, err)
	}
}

func TestOpenRejectsForeignSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db, err := sql.Open("sqlite", cfg.ProjectDBPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE projects (id TEXT PRIMARY KEY); PRAGMA user_version = 99"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = db.Close()

	if _, err := project.Open(cfg); !errors.Is(err, project.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenRejectsUnversionedDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	db, err := sql.Open("sqlite", cfg.ProjectDBPath())
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE notes (body TEXT)"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_ = db.Close()

	if _, err := project.Open(cfg); !errors.Is(err, project.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
