package api

import (
	"capgenius/internal/captions"
	"capgenius/internal/deps"
	"capgenius/internal/editor"
	"capgenius/internal/language"
	"capgenius/internal/playback"
	"capgenius/internal/preflight"
	"capgenius/internal/project"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
	"capgenius/internal/transcribe"
)

// StatusResponse reports service readiness.
type StatusResponse struct {
	Provider     string             `json:"provider"`
	Ready        bool               `json:"ready"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Database     project.Health     `json:"database"`
}

// LanguagesResponse lists the caption languages.
type LanguagesResponse struct {
	Default   string              `json:"default"`
	Languages []language.Language `json:"languages"`
}

// PresetsResponse lists style presets and selectable fonts.
type PresetsResponse struct {
	Presets []style.Preset `json:"presets"`
	Fonts   []string       `json:"fonts"`
}

// VoicesResponse lists narration voices.
type VoicesResponse struct {
	Voices []transcribe.VoiceInfo `json:"voices"`
}

// ProjectListResponse lists saved projects, most recently updated first.
type ProjectListResponse struct {
	Projects []project.Summary `json:"projects"`
}

// CreateProjectRequest names a new project.
type CreateProjectRequest struct {
	Name string `json:"name"`
}

// RenameProjectRequest renames a project.
type RenameProjectRequest struct {
	Name string `json:"name"`
}

// GenerateRequest starts caption generation.
type GenerateRequest struct {
	Language string `json:"language"`
}

// CancelResponse reports whether a running generation was cancelled.
type CancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// CaptionTextRequest edits a caption's text.
type CaptionTextRequest struct {
	Text *string `json:"text"`
}

// SyncRequest snaps one caption edge to the playhead.
type SyncRequest struct {
	Edge string `json:"edge"`
}

// PointerRequest is one timeline gesture event.
type PointerRequest struct {
	Event     string  `json:"event"`
	CaptionID string  `json:"caption_id,omitempty"`
	Mode      string  `json:"mode,omitempty"`
	X         float64 `json:"x"`
	OriginX   float64 `json:"origin_x"`
	Scroll    float64 `json:"scroll"`
}

// PointerResponse reports the outcome of a gesture event.
type PointerResponse struct {
	Event    string             `json:"event"`
	Accepted bool               `json:"accepted"`
	Step     *timeline.Step     `json:"step,omitempty"`
	Time     *float64           `json:"time,omitempty"`
	Drag     *timeline.Drag     `json:"drag,omitempty"`
	Captions []captions.Caption `json:"captions"`
	Playback playback.State     `json:"playback"`
}

// PlaybackRequest mirrors the client's media element.
type PlaybackRequest struct {
	Action string  `json:"action"`
	Time   float64 `json:"time"`
}

// PlaybackResponse is the clock plus the frame to overlay.
type PlaybackResponse struct {
	Playback playback.State `json:"playback"`
	Frame    editor.Frame   `json:"frame"`
}

// PresetRequest applies a named preset.
type PresetRequest struct {
	Name string `json:"name"`
}

// NarrateRequest synthesizes speech for a caption text.
type NarrateRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}
