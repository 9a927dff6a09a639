package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiReply(text string) string {
	payload := map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestGeminiTranscribeSendsInlineVideo(t *testing.T) {
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "key-1" {
			t.Errorf("unexpected api key header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		io.WriteString(w, geminiReply(`[{"start":0.5,"end":1.2,"text":"Hello"},{"start":1.2,"end":2,"text":"world"}]`))
	}))
	defer server.Close()

	provider := NewGeminiProvider(GeminiConfig{APIKey: "key-1", BaseURL: server.URL, Model: "gemini-test"})
	segments, err := provider.Transcribe(context.Background(), Request{
		Video:       []byte("fake-video"),
		MimeType:    "video/mp4",
		Language:    "hi-en",
		Instruction: "Hinglish please",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 || segments[0].Text != "Hello" || segments[1].End != 2 {
		t.Fatalf("unexpected segments: %+v", segments)
	}

	parts := captured.Contents[0].Parts
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "video/mp4" {
		t.Fatalf("expected inline video part, got %+v", parts[0])
	}
	if parts[0].InlineData.Data != base64.StdEncoding.EncodeToString([]byte("fake-video")) {
		t.Fatal("video not base64 encoded")
	}
	if !strings.Contains(parts[1].Text, "1. Language: Hinglish please.") || !strings.Contains(parts[1].Text, "Max 4 words per segment") {
		t.Fatalf("unexpected prompt: %q", parts[1].Text)
	}
	gen := captured.GenerationConfig
	if gen == nil || gen.ResponseMimeType != "application/json" || gen.ResponseSchema == nil || gen.ResponseSchema.Type != "ARRAY" {
		t.Fatalf("unexpected generation config: %+v", gen)
	}
	if got := gen.ResponseSchema.Items.Required; len(got) != 3 {
		t.Fatalf("expected start/end/text required, got %v", got)
	}
}

func TestGeminiTranscribeOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantLen int
		wantErr error
	}{
		{"empty list is success", http.StatusOK, geminiReply("[]"), 0, nil},
		{"fenced payload", http.StatusOK, geminiReply("```json\n[{\"start\":1,\"end\":2,\"text\":\"hi\"}]\n```"), 1, nil},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, 0, ErrMalformedResponse},
		{"prose reply", http.StatusOK, geminiReply("I cannot help with that."), 0, ErrMalformedResponse},
		{"missing key", http.StatusOK, geminiReply(`[{"start":1,"text":"hi"}]`), 0, ErrMalformedResponse},
		{"object instead of array", http.StatusOK, geminiReply(`{"start":1,"end":2,"text":"hi"}`), 0, ErrMalformedResponse},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, 0, ErrRequestFailed},
		{"not json envelope", http.StatusOK, `<html>`, 0, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			provider := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})
			segments, err := provider.Transcribe(context.Background(), Request{Video: []byte("v"), MimeType: "video/mp4", Language: "en"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if segments == nil || len(segments) != tt.wantLen {
				t.Fatalf("expected %d segments, got %+v", tt.wantLen, segments)
			}
		})
	}
}

func TestGeminiStatusCodeIsExposed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	provider := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	_, err := provider.Transcribe(context.Background(), Request{Video: []byte("v"), MimeType: "video/mp4"})
	if StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%v)", StatusCode(err), err)
	}
	if msg := UserMessage(err); !strings.Contains(msg, "HTTP 403") {
		t.Fatalf("unexpected user message %q", msg)
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	provider := NewGeminiProvider(GeminiConfig{})
	if _, err := provider.Transcribe(context.Background(), Request{Video: []byte("v")}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestGeminiNarrate(t *testing.T) {
	audio := []byte{0x52, 0x49, 0x46, 0x46}
	var captured generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/tts-test:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		reply := map[string]any{"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{
			map[string]any{"inlineData": map[string]any{"mimeType": "audio/L16;rate=24000", "data": base64.StdEncoding.EncodeToString(audio)}},
		}}}}}
		json.NewEncoder(w).Encode(reply)
	}))
	defer server.Close()

	provider := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL, TTSModel: "tts-test"})
	got, err := provider.Narrate(context.Background(), "Check out karo", VoicePuck)
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if string(got.Data) != string(audio) || got.MimeType != "audio/L16;rate=24000" {
		t.Fatalf("unexpected audio: %+v", got)
	}
	if captured.Contents[0].Parts[0].Text != "Narrate with emotion: Check out karo" {
		t.Fatalf("unexpected prompt: %q", captured.Contents[0].Parts[0].Text)
	}
	cfg := captured.GenerationConfig
	if cfg == nil || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
		t.Fatalf("unexpected modalities: %+v", cfg)
	}
	if cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Puck" {
		t.Fatalf("unexpected voice: %+v", cfg.SpeechConfig)
	}
}

func TestNarrateWithoutAudioFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, geminiReply("sorry"))
	}))
	defer server.Close()
	provider := NewGeminiProvider(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	if _, err := provider.Narrate(context.Background(), "hi", ""); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestParseVoice(t *testing.T) {
	if v, err := ParseVoice("zephyr"); err != nil || v != VoiceZephyr {
		t.Fatalf("unexpected voice %q %v", v, err)
	}
	if v, _ := ParseVoice(""); v != VoiceKore {
		t.Fatalf("expected Kore default, got %q", v)
	}
	if _, err := ParseVoice("Alexa"); err == nil {
		t.Fatal("expected error for unknown voice")
	}
}
