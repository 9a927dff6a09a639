package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"capgenius/internal/captions"
	"capgenius/internal/language"
	"capgenius/internal/logging"
	"capgenius/internal/media"
	"capgenius/internal/playback"
	"capgenius/internal/project"
	"capgenius/internal/services"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
	"capgenius/internal/transcribe"
)

// Session is one project's editing state.
type Session struct {
	mu sync.Mutex
	// persistMu orders snapshot writes so a later snapshot is never
	// overwritten by an earlier one.
	persistMu sync.Mutex

	id        string
	name      string
	createdAt time.Time
	deps      Deps
	logger    *slog.Logger

	store    *captions.Store
	style    style.Style
	clock    playback.Clock
	engine   *timeline.Engine
	video    *media.Video
	state    project.State
	message  string
	language string

	gen     *generation
	lastGen error
	closed  bool

	// settled runs after a background generation finishes, outside the lock
	// and before Wait returns.
	settled func(*Session)
}

type generation struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewSession returns an idle session with no video, no captions and the
// default style.
func NewSession(id, name string, deps Deps) *Session {
	deps = deps.withDefaults()
	return &Session{
		id:        id,
		name:      name,
		createdAt: time.Now().UTC(),
		deps:      deps,
		logger:    sessionLogger(deps.Logger, id),
		store:     captions.NewStore(nil),
		style:     style.Default(),
		engine:    timeline.NewEngine(deps.Policy),
		state:     project.StateIdle,
	}
}

func sessionLogger(logger *slog.Logger, id string) *slog.Logger {
	return logging.NewComponentLogger(logger, "editor").With(logging.String(logging.FieldProjectID, id))
}

// ID returns the project ID.
func (s *Session) ID() string {
	return s.id
}

// AppState returns the current app state.
func (s *Session) AppState() project.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Message returns the last user-facing error, or "".
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Rename changes the project name.
func (s *Session) Rename(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return classify("rename", ErrClosed)
	}
	if name == "" {
		return services.Wrap(services.ErrValidation, "editor", "rename", "name is required", nil)
	}
	s.name = name
	return nil
}

// SelectVideo stages up as the session video. A non-video MIME type sets the
// "Please upload a valid video file." message and changes nothing else. On
// success the previous video is released, the clock is reset to the new
// duration, the state becomes editing and the message is cleared. Existing
// captions are kept.
func (s *Session) SelectVideo(ctx context.Context, up media.Upload) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return classify("select video", ErrClosed)
	}
	if err := media.ValidateMIME(up.MimeType); err != nil {
		s.message = media.InvalidVideoMessage
		s.mu.Unlock()
		s.logger.Info("video rejected", logging.String("mime_type", up.MimeType))
		return err
	}
	if s.deps.Stager == nil {
		s.mu.Unlock()
		return services.Wrap(services.ErrConfiguration, "editor", "select video", "no video stager configured", nil)
	}
	if s.gen != nil || s.state == project.StateUploading {
		s.mu.Unlock()
		return classify("select video", ErrBusy)
	}
	previous := s.state
	s.state = project.StateUploading
	s.mu.Unlock()

	video, err := s.deps.Stager.Stage(ctx, up)

	s.mu.Lock()
	if err != nil {
		s.state = previous
		if errors.Is(err, media.ErrNotVideo) {
			s.message = media.InvalidVideoMessage
		}
		s.mu.Unlock()
		logging.WarnWithContext(s.logger, "video staging failed", "video_stage_failed", logging.Error(err))
		return err
	}
	if s.closed {
		s.mu.Unlock()
		_ = video.Release()
		return classify("select video", ErrClosed)
	}
	old := s.video
	s.video = video
	s.engine.Reset()
	s.clock.Reset()
	s.clock.SetDuration(video.Duration)
	s.state = project.StateEditing
	s.message = ""
	s.mu.Unlock()

	if old != nil {
		if err := old.Release(); err != nil {
			logging.WarnWithContext(s.logger, "previous video release failed", "video_release_failed", logging.Error(err))
		}
	}
	s.logger.Info("video selected",
		logging.String("video", video.Name),
		logging.Int64("size_bytes", video.Size),
		logging.Float64("duration_seconds", video.Duration),
	)
	return nil
}

// SetDuration records the duration reported by the client's media element.
// Invalid values are ignored.
func (s *Session) SetDuration(d float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.SetDuration(d)
}

// Generate starts caption generation for the staged video in lang ("" uses
// the configured default). It returns once the request is running; Wait blocks
// until it finishes.
func (s *Session) Generate(ctx context.Context, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return classify("generate", ErrClosed)
	}
	if s.deps.Generator == nil {
		return services.Wrap(services.ErrConfiguration, "editor", "generate", "no transcription provider configured", nil)
	}
	if s.gen != nil || s.state == project.StateUploading {
		return classify("generate", ErrBusy)
	}
	if s.video == nil {
		return classify("generate", ErrNoVideo)
	}
	if lang == "" {
		lang = s.deps.DefaultLanguage
	}
	code, err := language.Normalize(lang)
	if err != nil {
		return services.Wrap(services.ErrValidation, "editor", "generate", "unsupported language", err)
	}

	genCtx := services.WithOperation(services.WithProjectID(ctx, s.id), "generate")
	genCtx, cancel := context.WithCancel(context.WithoutCancel(genCtx))
	g := &generation{cancel: cancel, done: make(chan struct{})}
	s.gen = g
	s.state = project.StateGenerating
	s.message = ""
	s.language = code
	video := s.video

	go s.runGeneration(genCtx, g, video, code)
	return nil
}

func (s *Session) runGeneration(ctx context.Context, g *generation, video *media.Video, code string) {
	var (
		result transcribe.Result
		err    error
	)
	data, err := video.Bytes()
	if err == nil {
		result, err = s.deps.Generator.Generate(ctx, transcribe.Request{
			Video:    data,
			FileName: video.Name,
			MimeType: video.MimeType,
			Language: code,
		})
	}
	s.finishGeneration(g, result, err)
	s.notify(context.WithoutCancel(ctx), len(result.Captions), err)

	if s.settled != nil {
		s.settled(s)
	}
	close(g.done)
}

func (s *Session) finishGeneration(g *generation, result transcribe.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.cancel()
	g.err = err
	s.gen = nil
	s.lastGen = err

	if s.state == project.StateGenerating {
		s.state = project.StateEditing
	}
	switch {
	case err == nil:
		s.engine.Reset()
		s.store.ReplaceAll(result.Captions)
		s.message = ""
		s.logger.Info("captions replaced", logging.Int("captions", len(result.Captions)))
	case errors.Is(err, context.Canceled):
		s.message = ""
		s.logger.Info("caption generation cancelled")
	default:
		s.message = GenerationFailedPrefix + transcribe.UserMessage(err)
		logging.WarnWithContext(s.logger, "caption generation failed", "generation_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "captions left unchanged"),
		)
	}
}

// notify reports the outcome in the background so a slow notification
// endpoint never holds up Wait.
func (s *Session) notify(ctx context.Context, count int, err error) {
	n := s.deps.Notifier
	if n == nil || errors.Is(err, context.Canceled) {
		return
	}
	s.mu.Lock()
	name, lang := s.name, s.language
	s.mu.Unlock()

	go func() {
		var sendErr error
		if err == nil {
			sendErr = n.GenerationCompleted(ctx, name, count, lang)
		} else {
			sendErr = n.GenerationFailed(ctx, name, transcribe.UserMessage(err))
		}
		if sendErr != nil {
			s.logger.Warn("generation notification failed", logging.Error(sendErr))
		}
	}()
}

// CancelGeneration aborts the in-flight generation. It reports whether one
// was running.
func (s *Session) CancelGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == nil {
		return false
	}
	s.gen.cancel()
	return true
}

// Generating reports whether a generation is in flight.
func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != nil
}

// Wait blocks until the in-flight generation finishes and returns its error.
// Without one it returns the outcome of the last generation.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	g := s.gen
	last := s.lastGen
	s.mu.Unlock()
	if g == nil {
		return last
	}
	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any generation, waits for it and releases the staged video.
// Later calls do nothing.
func (s *Session) Close() error {
	if !s.shutdown() {
		return nil
	}
	s.mu.Lock()
	video := s.video
	s.video = nil
	s.mu.Unlock()
	if video != nil {
		return video.Release()
	}
	return nil
}

// Suspend cancels any generation and stops the session but keeps the staged
// video on disk so a saved project can be reopened.
func (s *Session) Suspend() {
	s.shutdown()
}

func (s *Session) shutdown() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.engine.Reset()
	g := s.gen
	if g != nil {
		g.cancel()
	}
	s.mu.Unlock()

	if g != nil {
		<-g.done
	}
	return true
}
