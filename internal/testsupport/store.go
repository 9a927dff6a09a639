package testsupport

import (
	"context"
	"testing"

	"capgenius/internal/config"
	"capgenius/internal/project"
)

// MustOpenStore opens a project.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.Store {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject creates a project for tests using the provided store.
func NewProject(t testing.TB, store *project.Store, name string) *project.Record {
	t.Helper()

	rec, err := store.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return rec
}
