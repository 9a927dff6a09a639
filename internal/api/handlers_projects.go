package api

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"capgenius/internal/editor"
	"capgenius/internal/logging"
	"capgenius/internal/media"
	"capgenius/internal/services"
	"capgenius/internal/srt"
	"capgenius/internal/textutil"
	"capgenius/internal/transcribe"
)

// sniffLen is how much of an upload is peeked when the client sends no type.
const sniffLen = 512

// projectContext attaches the project id from the route to the request context.
func (s *Server) projectContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithProjectID(r.Context(), chi.URLParam(r, "id"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	sess, err := s.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return nil, false
	}
	return sess, true
}

// update runs fn against the routed project; the manager saves it afterwards.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*editor.Session) error) (*editor.Session, bool) {
	var sess *editor.Session
	err := s.manager.Update(r.Context(), chi.URLParam(r, "id"), func(x *editor.Session) error {
		sess = x
		return fn(x)
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.manager.List(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	sess, err := s.manager.Create(r.Context(), req.Name)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.logger.Info("project created", logging.String(logging.FieldProjectID, sess.ID()))
	s.writeJSON(w, http.StatusCreated, sess.Status())
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req RenameProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	sess, ok := s.update(w, r, func(x *editor.Session) error {
		return x.Rename(strings.TrimSpace(req.Name))
	})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadVideo stages the raw request body as the project video. The
// Content-Type header is the video's MIME type; without one it is guessed
// from the ?name= extension and the leading bytes.
func (s *Server) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "video"
	}
	body := bufio.NewReaderSize(r.Body, sniffLen)
	mimeType := strings.TrimSpace(r.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		head, _ := body.Peek(sniffLen)
		mimeType = media.DetectMIME(name, head)
	}
	up := media.Upload{
		Name:     name,
		MimeType: mimeType,
		Size:     r.ContentLength,
		Body:     body,
	}
	sess, ok := s.update(w, r, func(x *editor.Session) error {
		return x.SelectVideo(r.Context(), up)
	})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Status())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	sess, ok := s.update(w, r, func(x *editor.Session) error {
		return x.Generate(r.Context(), req.Language)
	})
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusAccepted, sess.Status())
}

func (s *Server) handleCancelGenerate(w http.ResponseWriter, r *http.Request) {
	var cancelled bool
	if _, ok := s.update(w, r, func(x *editor.Session) error {
		cancelled = x.CancelGeneration()
		return nil
	}); !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, CancelResponse{Cancelled: cancelled})
}

// handleExport downloads the captions as SRT. A project without captions
// answers 204 with no body.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	content, err := sess.ExportSRT()
	if errors.Is(err, srt.ErrNothingToExport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", srt.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, s.exportFilename()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

func (s *Server) exportFilename() string {
	if name := textutil.SanitizeFileName(s.cfg.Export.Filename); name != "" {
		return name
	}
	return srt.DefaultFilename
}

func (s *Server) handleNarrate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	var req NarrateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.writeFailure(w, r, badRequest("narrate", "text is required"))
		return
	}
	voice, err := transcribe.ParseVoice(req.Voice)
	if err != nil {
		s.writeFailure(w, r, services.Wrap(services.ErrValidation, "api", "narrate", "", err))
		return
	}
	if s.narrator == nil {
		s.writeFailure(w, r, services.Wrap(services.ErrConfiguration, "api", "narrate", "narration is not configured", nil))
		return
	}
	audio, err := s.narrator.Narrate(r.Context(), text, voice)
	if err != nil {
		s.writeFailure(w, r, services.Wrap(services.ErrExternalTool, "api", "narrate", transcribe.UserMessage(err), err))
		return
	}
	w.Header().Set("Content-Type", audio.MimeType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio.Data)
}
