package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"capgenius/internal/language"
)

// WhisperConfig captures the settings for an OpenAI-compatible Whisper endpoint.
type WhisperConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// WhisperProvider transcribes through the OpenAI audio transcription API.
// Segments longer than MaxWordsPerSegment are split, with time shared out in
// proportion to word count.
type WhisperProvider struct {
	client *openai.Client
	model  string
}

// NewWhisperProvider constructs a provider. httpClient may be nil.
func NewWhisperProvider(cfg WhisperConfig, httpClient *http.Client) *WhisperProvider {
	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = base
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperProvider{client: openai.NewClientWithConfig(clientCfg), model: model}
}

// Name identifies the provider in logs.
func (p *WhisperProvider) Name() string {
	return "whisper"
}

// Transcribe uploads the video and converts verbose segments into captions.
func (p *WhisperProvider) Transcribe(ctx context.Context, req Request) ([]Segment, error) {
	if len(req.Video) == 0 {
		return nil, ErrEmptyVideo
	}
	name := filepath.Base(strings.TrimSpace(req.FileName))
	if name == "" || name == "." {
		name = "video.mp4"
	}
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.model,
		FilePath: name,
		Reader:   bytes.NewReader(req.Video),
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: language.ISO2(req.Language),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %w", ErrRequestFailed, &httpStatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message})
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, fmt.Errorf("%w: %w", ErrRequestFailed, &httpStatusError{StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()})
		}
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) != "" {
			return nil, fmt.Errorf("%w: transcript has text but no segments", ErrMalformedResponse)
		}
		return []Segment{}, nil
	}
	segments := make([]Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		for _, piece := range splitSegment(Segment{Start: s.Start, End: s.End, Text: s.Text}, MaxWordsPerSegment) {
			if degenerate(piece) {
				continue
			}
			segments = append(segments, piece)
		}
	}
	return segments, nil
}

// degenerate reports segments Whisper emits around silence or that rounding
// collapsed to zero length. They carry nothing to caption.
func degenerate(seg Segment) bool {
	return seg.Text == "" || seg.End <= seg.Start
}

// splitSegment breaks a segment into pieces of at most maxWords words. Piece
// boundaries are placed by word count and rounded to the millisecond.
func splitSegment(seg Segment, maxWords int) []Segment {
	words := strings.Fields(seg.Text)
	if maxWords <= 0 || len(words) <= maxWords {
		seg.Text = strings.Join(words, " ")
		return []Segment{seg}
	}
	span := seg.End - seg.Start
	total := float64(len(words))
	var out []Segment
	for i := 0; i < len(words); i += maxWords {
		j := min(i+maxWords, len(words))
		start := seg.Start + span*float64(i)/total
		end := seg.Start + span*float64(j)/total
		if j == len(words) {
			end = seg.End
		}
		out = append(out, Segment{
			Start: math.Round(start*1000) / 1000,
			End:   math.Round(end*1000) / 1000,
			Text:  strings.Join(words[i:j], " "),
		})
	}
	return out
}
