package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"capgenius/internal/captions"
	"capgenius/internal/services"
	"capgenius/internal/style"
)

// DefaultName is used when a project is created without a name.
const DefaultName = "Untitled project"

// Create inserts an idle project with no video, no captions and the default style.
func (s *Store) Create(ctx context.Context, name string) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	now := s.now().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		Name:      name,
		State:     StateIdle,
		Captions:  []captions.Caption{},
		Style:     style.Default(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	captionsJSON, styleJSON, err := encodeDocuments(rec)
	if err != nil {
		return nil, err
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO projects (
            id, name, video_path, video_name, video_mime, video_size, duration, position,
            state, error_message, captions_json, style_json, language, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Name,
		nil,
		nil,
		nil,
		0,
		0.0,
		0.0,
		rec.State,
		nil,
		captionsJSON,
		styleJSON,
		nil,
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return rec, nil
}

// Get fetches a project by ID. It returns nil, nil when no project matches.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM projects WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return rec, nil
}

// List returns every project, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save writes every mutable field of rec and refreshes its UpdatedAt.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("project record is nil")
	}
	captionsJSON, styleJSON, err := encodeDocuments(rec)
	if err != nil {
		return err
	}
	updated := s.now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE projects
         SET name = ?, video_path = ?, video_name = ?, video_mime = ?, video_size = ?,
             duration = ?, position = ?, state = ?, error_message = ?, captions_json = ?,
             style_json = ?, language = ?, updated_at = ?
         WHERE id = ?`,
		rec.Name,
		nullableString(rec.VideoPath),
		nullableString(rec.VideoName),
		nullableString(rec.VideoMime),
		rec.VideoSize,
		rec.Duration,
		rec.Position,
		rec.State,
		nullableString(rec.ErrorMessage),
		captionsJSON,
		styleJSON,
		nullableString(rec.Language),
		formatTime(updated),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return services.Wrap(services.ErrNotFound, "project", "save", "project "+rec.ID, nil)
	}
	rec.UpdatedAt = updated
	return nil
}

// Delete removes a project row. It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return affected > 0, nil
}

// Stats counts projects per state.
func (s *Store) Stats(ctx context.Context) (map[State]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM projects GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[State]int)
	for rows.Next() {
		var state State
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

// CheckHealth returns diagnostic information about the project database.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{DBPath: s.path, SchemaVersion: schemaVersion}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat project database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("project database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	stats, err := s.Stats(ctx)
	if err != nil {
		return health, err
	}
	health.ByState = stats
	for _, count := range stats {
		health.Total += count
	}
	return health, nil
}

func encodeDocuments(rec *Record) (string, string, error) {
	items := rec.Captions
	if items == nil {
		items = []captions.Caption{}
	}
	captionsJSON, err := json.Marshal(items)
	if err != nil {
		return "", "", fmt.Errorf("encode captions: %w", err)
	}
	styleJSON, err := json.Marshal(rec.Style)
	if err != nil {
		return "", "", fmt.Errorf("encode style: %w", err)
	}
	return string(captionsJSON), string(styleJSON), nil
}
