package api

import (
	"net/http"
	"strconv"

	"capgenius/internal/deps"
	"capgenius/internal/language"
	"capgenius/internal/preflight"
	"capgenius/internal/style"
	"capgenius/internal/transcribe"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	remote, _ := strconv.ParseBool(r.URL.Query().Get("remote"))
	checks := preflight.RunAll(r.Context(), s.cfg, remote)
	dependencies := preflight.CheckSystemDeps(s.cfg)

	resp := StatusResponse{
		Provider:     s.cfg.Transcription.Provider,
		Ready:        len(preflight.Failed(checks)) == 0 && len(deps.MissingRequired(dependencies)) == 0,
		Checks:       checks,
		Dependencies: dependencies,
	}
	if s.store != nil {
		health, err := s.store.CheckHealth(r.Context())
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		resp.Database = health
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, LanguagesResponse{
		Default:   s.cfg.Transcription.DefaultLanguage,
		Languages: language.Supported(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, PresetsResponse{
		Presets: s.manager.Deps().Presets.List(),
		Fonts:   style.Fonts,
	})
}

func (s *Server) handleVoices(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, VoicesResponse{Voices: transcribe.Voices()})
}
