package editor

import (
	"fmt"

	"capgenius/internal/captions"
	"capgenius/internal/logging"
	"capgenius/internal/media"
	"capgenius/internal/playback"
	"capgenius/internal/project"
	"capgenius/internal/srt"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
)

// Frame is what the player overlays at one instant.
type Frame struct {
	Time    float64           `json:"time"`
	Caption *captions.Caption `json:"caption,omitempty"`
	Overlay *style.Overlay    `json:"overlay,omitempty"`
}

// VideoInfo describes the staged video.
type VideoInfo struct {
	Name     string  `json:"name"`
	MimeType string  `json:"mime_type"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration"`
}

// Status is the full session view returned by the API.
type Status struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	State      project.State      `json:"state"`
	Error      string             `json:"error,omitempty"`
	Generating bool               `json:"generating"`
	Language   string             `json:"language,omitempty"`
	Video      *VideoInfo         `json:"video,omitempty"`
	Playback   playback.State     `json:"playback"`
	Captions   []captions.Caption `json:"captions"`
	Style      style.Style        `json:"style"`
	Drag       *timeline.Drag     `json:"drag,omitempty"`
}

// Status snapshots the session for display.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{
		ID:         s.id,
		Name:       s.name,
		State:      s.state,
		Error:      s.message,
		Generating: s.gen != nil,
		Language:   s.language,
		Playback:   s.clock.State(),
		Captions:   s.store.List(),
		Style:      s.style,
	}
	if s.video != nil {
		status.Video = &VideoInfo{
			Name:     s.video.Name,
			MimeType: s.video.MimeType,
			Size:     s.video.Size,
			Duration: s.video.Duration,
		}
	}
	if drag, ok := s.engine.Active(); ok {
		status.Drag = &drag
	}
	return status
}

// Captions returns the caption list in start order.
func (s *Session) Captions() []captions.Caption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// Frame returns the first caption active at t with its resolved overlay.
func (s *Session) Frame(t float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameAt(t)
}

// CurrentFrame returns the frame at the playback position.
func (s *Session) CurrentFrame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameAt(s.clock.Current())
}

func (s *Session) frameAt(t float64) Frame {
	frame := Frame{Time: t}
	c, ok := s.store.FirstActiveAt(t)
	if !ok {
		return frame
	}
	overlay := style.Resolve(s.style, c.Text)
	frame.Caption = &c
	frame.Overlay = &overlay
	return frame
}

// Timeline lays out the caption blocks for the given screen geometry.
func (s *Session) Timeline(p Pointer) timeline.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track(p).View(s.store.List(), s.clock.Current())
}

// ExportSRT renders the captions as SRT. With no captions it returns
// srt.ErrNothingToExport.
func (s *Session) ExportSRT() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.Len() == 0 {
		return "", srt.ErrNothingToExport
	}
	return srt.Render(s.store.List()), nil
}

// ExportFile writes the captions to dir/filename and returns the path.
func (s *Session) ExportFile(dir, filename string) (string, error) {
	items := s.Captions()
	path, err := srt.Export(items, dir, filename)
	if err != nil {
		return "", err
	}
	s.logger.Info("captions exported", logging.String("path", path), logging.Int("captions", len(items)))
	return path, nil
}

// Snapshot captures the persistent part of the session.
func (s *Session) Snapshot() project.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := project.Record{
		ID:           s.id,
		Name:         s.name,
		Duration:     s.clock.Duration(),
		Position:     s.clock.Current(),
		State:        s.state,
		ErrorMessage: s.message,
		Captions:     s.store.List(),
		Style:        s.style,
		Language:     s.language,
		CreatedAt:    s.createdAt,
	}
	if s.video != nil {
		rec.VideoPath = s.video.Path
		rec.VideoName = s.video.Name
		rec.VideoMime = s.video.MimeType
		rec.VideoSize = s.video.Size
	}
	return rec
}

// Restore rebuilds a session from a saved project. A staged video that no
// longer exists is dropped with a warning. A session saved mid-upload or
// mid-generation resumes in the state that request would have returned to.
func Restore(rec *project.Record, deps Deps) (*Session, error) {
	if rec == nil {
		return nil, fmt.Errorf("restore session: nil record")
	}
	s := NewSession(rec.ID, rec.Name, deps)
	if !rec.CreatedAt.IsZero() {
		s.createdAt = rec.CreatedAt
	}
	s.store.ReplaceAll(rec.Captions)
	s.style = rec.Style
	if err := s.style.Validate(); err != nil {
		logging.WarnWithContext(s.logger, "saved style invalid, using default", "style_restore_failed", logging.Error(err))
		s.style = style.Default()
	}
	s.language = rec.Language
	s.message = rec.ErrorMessage

	if rec.HasVideo() {
		video, err := media.Open(rec.VideoPath, rec.VideoName, rec.VideoMime, rec.Duration)
		if err != nil {
			logging.WarnWithContext(s.logger, "staged video missing", "video_restore_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "video must be uploaded again"),
			)
		} else {
			s.video = video
		}
	}
	s.clock.SetDuration(rec.Duration)
	s.clock.Seek(rec.Position)

	switch {
	case s.video != nil:
		s.state = project.StateEditing
	case rec.State == project.StateEditing && s.store.Len() > 0:
		s.state = project.StateEditing
	default:
		s.state = project.StateIdle
	}
	return s, nil
}
