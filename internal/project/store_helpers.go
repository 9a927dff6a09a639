package project

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"capgenius/internal/captions"
	"capgenius/internal/style"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const recordColumns = "id, name, video_path, video_name, video_mime, video_size, duration, position, state, error_message, captions_json, style_json, language, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id           string
		name         string
		videoPath    sql.NullString
		videoName    sql.NullString
		videoMime    sql.NullString
		videoSize    int64
		duration     float64
		position     float64
		state        string
		errorMessage sql.NullString
		captionsRaw  string
		styleRaw     sql.NullString
		language     sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&name,
		&videoPath,
		&videoName,
		&videoMime,
		&videoSize,
		&duration,
		&position,
		&state,
		&errorMessage,
		&captionsRaw,
		&styleRaw,
		&language,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:           id,
		Name:         name,
		VideoPath:    videoPath.String,
		VideoName:    videoName.String,
		VideoMime:    videoMime.String,
		VideoSize:    videoSize,
		Duration:     duration,
		Position:     position,
		State:        State(state),
		ErrorMessage: errorMessage.String,
		Language:     language.String,
		Captions:     []captions.Caption{},
		Style:        style.Default(),
	}
	if captionsRaw != "" {
		if err := json.Unmarshal([]byte(captionsRaw), &rec.Captions); err != nil {
			return nil, fmt.Errorf("decode captions for %s: %w", id, err)
		}
	}
	if styleRaw.Valid && styleRaw.String != "" {
		if err := json.Unmarshal([]byte(styleRaw.String), &rec.Style); err != nil {
			return nil, fmt.Errorf("decode style for %s: %w", id, err)
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		rec.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		rec.UpdatedAt = updated
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
