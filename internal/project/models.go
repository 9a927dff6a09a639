package project

import (
	"time"

	"capgenius/internal/captions"
	"capgenius/internal/style"
)

// State is the app state of an editing session.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateGenerating State = "generating"
	StateEditing    State = "editing"
)

// States lists every state in lifecycle order.
func States() []State {
	return []State{StateIdle, StateUploading, StateGenerating, StateEditing}
}

// Record is one persisted project.
type Record struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	VideoPath    string             `json:"video_path,omitempty"`
	VideoName    string             `json:"video_name,omitempty"`
	VideoMime    string             `json:"video_mime,omitempty"`
	VideoSize    int64              `json:"video_size"`
	Duration     float64            `json:"duration"`
	Position     float64            `json:"position"`
	State        State              `json:"state"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Captions     []captions.Caption `json:"captions"`
	Style        style.Style        `json:"style"`
	Language     string             `json:"language,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// HasVideo reports whether a staged video is attached.
func (r *Record) HasVideo() bool {
	return r != nil && r.VideoPath != ""
}

// Summary is a lightweight view used by listings.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	VideoName string    `json:"video_name,omitempty"`
	VideoSize int64     `json:"video_size"`
	Duration  float64   `json:"duration"`
	State     State     `json:"state"`
	Captions  int       `json:"captions"`
	Language  string    `json:"language,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summarize builds a listing entry from r.
func (r *Record) Summarize() Summary {
	return Summary{
		ID:        r.ID,
		Name:      r.Name,
		VideoName: r.VideoName,
		VideoSize: r.VideoSize,
		Duration:  r.Duration,
		State:     r.State,
		Captions:  len(r.Captions),
		Language:  r.Language,
		UpdatedAt: r.UpdatedAt,
	}
}

// Health describes the project database for diagnostics.
type Health struct {
	DBPath         string        `json:"db_path"`
	DatabaseExists bool          `json:"database_exists"`
	SchemaVersion  int           `json:"schema_version"`
	Total          int           `json:"total"`
	ByState        map[State]int `json:"by_state"`
}
