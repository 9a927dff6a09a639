package transcribe

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWhisperTranscribeSplitsSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("unexpected format %q", got)
		}
		if got := r.FormValue("language"); got != "hi" {
			t.Errorf("unexpected language %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"gazab content hai bhai check out","segments":[{"id":0,"start":0,"end":3,"text":"gazab content hai bhai check out"}]}`)
	}))
	defer server.Close()

	provider := NewWhisperProvider(WhisperConfig{APIKey: "sk", BaseURL: server.URL + "/v1"}, server.Client())
	segments, err := provider.Transcribe(context.Background(), Request{Video: []byte("v"), FileName: "clip.mp4", Language: "hi-en"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected segment split into 2, got %+v", segments)
	}
	if segments[0].Text != "gazab content hai bhai" || segments[1].End != 3 {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}

func TestWhisperDropsEmptyAndZeroLengthSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"hello there um","segments":[`+
			`{"id":0,"start":0,"end":2,"text":"hello there"},`+
			`{"id":1,"start":2,"end":2.5,"text":"  "},`+
			`{"id":2,"start":3,"end":3,"text":"um"}]}`)
	}))
	defer server.Close()

	provider := NewWhisperProvider(WhisperConfig{APIKey: "sk", BaseURL: server.URL + "/v1"}, server.Client())
	result, err := NewPipeline(provider).Generate(context.Background(), Request{Video: []byte("v"), Language: "en"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Captions) != 1 || result.Captions[0].Text != "hello there" {
		t.Fatalf("expected only the spoken segment, got %+v", result.Captions)
	}
}

func TestWhisperFailureIsRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	provider := NewWhisperProvider(WhisperConfig{APIKey: "sk", BaseURL: server.URL + "/v1"}, server.Client())
	_, err := provider.Transcribe(context.Background(), Request{Video: []byte("v"), Language: "en"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", StatusCode(err))
	}
}
