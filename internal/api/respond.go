package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"capgenius/internal/logging"
	"capgenius/internal/media"
	"capgenius/internal/services"
)

// maxJSONBody bounds decoded request bodies.
const maxJSONBody = 1 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeErrorBody(w, status, message)
}

func writeErrorBody(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeFailure maps err to a status and logs server-side failures.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	s.writeError(w, status, errorMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, media.ErrNotVideo):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	switch services.Kind(err) {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "timeout":
		return http.StatusGatewayTimeout
	case "external":
		return http.StatusBadGateway
	case "configuration":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	if errors.Is(err, media.ErrNotVideo) {
		return media.InvalidVideoMessage
	}
	return err.Error()
}

// decodeJSON reads a JSON body into target. An empty body leaves target untouched.
func decodeJSON(r *http.Request, target any) error {
	body := http.MaxBytesReader(nil, r.Body, maxJSONBody)
	err := json.NewDecoder(body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return services.Wrap(services.ErrValidation, "api", "decode request", "invalid JSON body", err)
}

func badRequest(op, message string) error {
	return services.Wrap(services.ErrValidation, "api", op, message, nil)
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, key string) (float64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !finite(v) {
		return 0, false, badRequest("parse query", fmt.Sprintf("%s must be a number", key))
	}
	return v, true, nil
}
