package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"capgenius/internal/config"
	"capgenius/internal/editor"
	"capgenius/internal/logging"
	"capgenius/internal/project"
	"capgenius/internal/transcribe"
)

// Options wires the server collaborators. Narrator may be nil, in which case
// the narration route reports a configuration error.
type Options struct {
	Config   *config.Config
	Manager  *editor.Manager
	Store    *project.Store
	Narrator transcribe.Narrator
	Logger   *slog.Logger
}

// Server is the HTTP front end of the caption editor.
type Server struct {
	cfg      *config.Config
	manager  *editor.Manager
	store    *project.Store
	narrator transcribe.Narrator
	logger   *slog.Logger
	handler  http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// New builds the router. It does not bind a socket.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Manager == nil {
		return nil, errors.New("api: config and manager are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:      opts.Config,
		manager:  opts.Manager,
		store:    opts.Store,
		narrator: opts.Narrator,
		logger:   logging.NewComponentLogger(logger, "api-server"),
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestContext)
	r.Use(authMiddleware(s.cfg.Paths.APIToken))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/languages", s.handleLanguages)
		r.Get("/presets", s.handlePresets)
		r.Get("/voices", s.handleVoices)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Post("/", s.handleCreateProject)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.projectContext)
				r.Get("/", s.handleGetProject)
				r.Patch("/", s.handleRenameProject)
				r.Delete("/", s.handleDeleteProject)

				r.Put("/video", s.handleUploadVideo)
				r.Post("/generate", s.handleGenerate)
				r.Delete("/generate", s.handleCancelGenerate)

				r.Patch("/captions/{cid}", s.handleUpdateCaption)
				r.Delete("/captions/{cid}", s.handleDeleteCaption)
				r.Post("/captions/{cid}/sync", s.handleSyncCaption)

				r.Get("/timeline", s.handleTimeline)
				r.Post("/timeline/pointer", s.handlePointer)

				r.Post("/playback", s.handlePlayback)
				r.Get("/frame", s.handleFrame)

				r.Put("/style", s.handlePatchStyle)
				r.Delete("/style", s.handleResetStyle)
				r.Post("/style/preset", s.handleApplyPreset)

				r.Get("/export.srt", s.handleExport)
				r.Post("/narrate", s.handleNarrate)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds paths.api_bind and serves until ctx ends or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return errors.New("api: bind address is empty")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Uploads stream through the body, so there is no whole-request read timeout.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown incomplete", logging.Error(err))
		_ = server.Close()
	}
}
