package api

import (
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"capgenius/internal/captions"
	"capgenius/internal/editor"
	"capgenius/internal/services"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
)

func (s *Server) handleUpdateCaption(w http.ResponseWriter, r *http.Request) {
	var req CaptionTextRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.Text == nil {
		s.writeFailure(w, r, badRequest("update caption", "text is required"))
		return
	}
	id := chi.URLParam(r, "cid")
	sess, ok := s.update(w, r, func(x *editor.Session) error {
		return x.UpdateText(id, *req.Text)
	})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleDeleteCaption(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "cid")
	sess, ok := s.update(w, r, func(x *editor.Session) error {
		return x.DeleteCaption(id)
	})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleSyncCaption(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	id := chi.URLParam(r, "cid")
	sess, ok := s.update(w, r, func(x *editor.Session) error {
		return x.SyncToPlayhead(id, captions.Edge(req.Edge))
	})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	originX, _, err := queryFloat(r, "origin_x")
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	scroll, _, err := queryFloat(r, "scroll")
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Timeline(editor.Pointer{OriginX: originX, Scroll: scroll}))
}

// handlePointer applies one timeline gesture event: down, move, up, cancel
// or click.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if !finite(req.X) || !finite(req.OriginX) || !finite(req.Scroll) {
		s.writeFailure(w, r, badRequest("pointer", "pointer coordinates must be finite"))
		return
	}
	event := strings.ToLower(strings.TrimSpace(req.Event))
	p := editor.Pointer{X: req.X, OriginX: req.OriginX, Scroll: req.Scroll}
	resp := PointerResponse{Event: event}

	var apply func(*editor.Session) error
	switch event {
	case "down":
		mode, err := timeline.ParseMode(req.Mode)
		if err != nil {
			s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "pointer", "", err))
			return
		}
		apply = func(x *editor.Session) (err error) {
			resp.Accepted, err = x.PointerDown(req.CaptionID, mode)
			return err
		}
	case "move":
		apply = func(x *editor.Session) error {
			step, err := x.PointerMove(p)
			resp.Step = &step
			resp.Accepted = err == nil && !step.Ended
			return err
		}
	case "up":
		apply = func(x *editor.Session) (err error) {
			resp.Accepted, err = x.PointerUp()
			return err
		}
	case "cancel":
		apply = func(x *editor.Session) (err error) {
			resp.Accepted, err = x.PointerCancel()
			return err
		}
	case "click":
		apply = func(x *editor.Session) error {
			t, ok := x.Click(p)
			resp.Time = &t
			resp.Accepted = ok
			return nil
		}
	default:
		s.writeFailure(w, r, badRequest("pointer", "event must be one of down, move, up, cancel, click"))
		return
	}

	sess, ok := s.update(w, r, apply)
	if !ok {
		return
	}
	status := sess.Status()
	resp.Drag = status.Drag
	resp.Captions = status.Captions
	resp.Playback = status.Playback
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	var req PlaybackRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if !finite(req.Time) {
		s.writeFailure(w, r, badRequest("playback", "time must be finite"))
		return
	}
	var apply func(*editor.Session) error
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "seek":
		apply = func(x *editor.Session) error {
			x.Seek(req.Time)
			return nil
		}
	case "tick":
		apply = func(x *editor.Session) error {
			x.Tick(req.Time)
			return nil
		}
	case "duration":
		apply = func(x *editor.Session) error {
			if !x.SetDuration(req.Time) {
				return badRequest("playback", "duration must be positive")
			}
			return nil
		}
	default:
		s.writeFailure(w, r, badRequest("playback", "action must be one of seek, tick, duration"))
		return
	}
	sess, ok := s.update(w, r, apply)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, PlaybackResponse{
		Playback: sess.Status().Playback,
		Frame:    sess.CurrentFrame(),
	})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	t, set, err := queryFloat(r, "t")
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if set {
		s.writeJSON(w, http.StatusOK, sess.Frame(t))
		return
	}
	s.writeJSON(w, http.StatusOK, sess.CurrentFrame())
}

func (s *Server) handlePatchStyle(w http.ResponseWriter, r *http.Request) {
	var patch style.Patch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var updated style.Style
	if _, ok := s.update(w, r, func(x *editor.Session) (err error) {
		updated, err = x.PatchStyle(patch)
		return err
	}); !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var updated style.Style
	if _, ok := s.update(w, r, func(x *editor.Session) (err error) {
		updated, err = x.ApplyPreset(req.Name)
		return err
	}); !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleResetStyle(w http.ResponseWriter, r *http.Request) {
	var updated style.Style
	if _, ok := s.update(w, r, func(x *editor.Session) error {
		updated = x.ResetStyle()
		return nil
	}); !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
