package transcribe

import (
	"context"
	"errors"
)

var (
	// ErrMalformedResponse reports a provider reply that is missing or cannot
	// be read as a list of {start, end, text} segments.
	ErrMalformedResponse = errors.New("malformed transcription response")
	// ErrRequestFailed reports a transport, authentication or quota failure.
	ErrRequestFailed = errors.New("transcription request failed")
	// ErrEmptyVideo reports a request without video bytes.
	ErrEmptyVideo = errors.New("video payload is empty")
)

// MaxWordsPerSegment bounds segment length in the transcription prompt and
// when splitting provider segments that ignore it.
const MaxWordsPerSegment = 4

// Request is one transcription call.
type Request struct {
	Video    []byte
	FileName string
	MimeType string
	// Language is the canonical language code ("en", "hi-en", ...).
	Language string
	// Instruction is the language selector sent to the model. Pipeline fills
	// it from Language.
	Instruction string
}

// Segment is a raw provider result before validation.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Provider performs a single transcription request.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, req Request) ([]Segment, error)
}

// Narrator synthesizes speech for a caption text.
type Narrator interface {
	Narrate(ctx context.Context, text string, voice Voice) (Audio, error)
}
