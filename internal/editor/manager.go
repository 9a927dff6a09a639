package editor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"capgenius/internal/logging"
	"capgenius/internal/project"
	"capgenius/internal/services"
)

// Manager keeps one Session per open project and persists sessions to the
// project store after they change.
type Manager struct {
	store  *project.Store
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager builds a manager over store.
func NewManager(store *project.Store, deps Deps) *Manager {
	deps = deps.withDefaults()
	return &Manager{
		store:    store,
		deps:     deps,
		logger:   logging.NewComponentLogger(deps.Logger, "editor-manager"),
		sessions: make(map[string]*Session),
	}
}

// Deps returns the collaborators shared by every session.
func (m *Manager) Deps() Deps {
	return m.deps
}

// Create inserts a new project and opens its session.
func (m *Manager) Create(ctx context.Context, name string) (*Session, error) {
	rec, err := m.store.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	s := NewSession(rec.ID, rec.Name, m.deps)
	s.createdAt = rec.CreatedAt
	return m.adopt(s)
}

// Get returns the session for id, restoring it from the store when needed.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, classify("open project", ErrClosed)
	}
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "editor", "open project", "project "+id, nil)
	}
	s, err := Restore(rec, m.deps)
	if err != nil {
		return nil, err
	}
	return m.adopt(s)
}

// adopt registers s unless another goroutine restored the same project first.
func (m *Manager) adopt(s *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, classify("open project", ErrClosed)
	}
	if existing, ok := m.sessions[s.id]; ok {
		return existing, nil
	}
	s.settled = m.persistAsync
	m.sessions[s.id] = s
	return s, nil
}

// List returns summaries of every saved project.
func (m *Manager) List(ctx context.Context) ([]project.Summary, error) {
	records, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]project.Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, rec.Summarize())
	}
	return summaries, nil
}

// Update runs fn against the session for id and then saves it. The session is
// saved even when fn fails, since a rejected upload still records its message.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Session) error) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	fnErr := fn(s)
	if err := m.Persist(ctx, s); err != nil {
		if fnErr != nil {
			return errors.Join(fnErr, err)
		}
		return err
	}
	return fnErr
}

// Persist writes the session snapshot to the store.
func (m *Manager) Persist(ctx context.Context, s *Session) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	rec := s.Snapshot()
	return m.store.Save(ctx, &rec)
}

func (m *Manager) persistAsync(s *Session) {
	if err := m.Persist(context.Background(), s); err != nil {
		logging.ErrorWithContext(m.logger, "persist session failed", "session_persist_failed",
			logging.String(logging.FieldProjectID, s.id),
			logging.Error(err),
		)
	}
}

// Delete closes the session for id, releases its video and removes the project.
func (m *Manager) Delete(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()

	if err := s.Close(); err != nil {
		logging.WarnWithContext(m.logger, "video release failed", "video_release_failed",
			logging.String(logging.FieldProjectID, s.id),
			logging.Error(err),
		)
	}
	removed, err := m.store.Delete(ctx, s.id)
	if err != nil {
		return err
	}
	if !removed {
		return services.Wrap(services.ErrNotFound, "editor", "delete project", "project "+id, nil)
	}
	m.logger.Info("project deleted", logging.String(logging.FieldProjectID, s.id))
	return nil
}

// Close suspends every session, saving each one. Staged videos stay on disk so
// projects can be reopened.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		s.Suspend()
		if err := m.Persist(context.Background(), s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
