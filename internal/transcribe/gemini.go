package transcribe

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-3-flash-preview"
	defaultGeminiTTSModel = "gemini-2.5-flash-preview-tts"
	defaultHTTPTimeout    = 5 * time.Minute
	maxErrorBodyBytes     = 4 << 10
)

// GeminiConfig captures the runtime settings required to talk to Gemini.
type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TTSModel       string
	TimeoutSeconds int
}

// GeminiProvider calls the Gemini generateContent REST API.
type GeminiProvider struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

// NewGeminiProvider constructs a provider using the supplied configuration.
func NewGeminiProvider(cfg GeminiConfig) *GeminiProvider {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	p := &GeminiProvider{
		cfg: GeminiConfig{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TTSModel:       strings.TrimSpace(cfg.TTSModel),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	if p.cfg.BaseURL == "" {
		p.cfg.BaseURL = defaultGeminiBaseURL
	}
	if p.cfg.Model == "" {
		p.cfg.Model = defaultGeminiModel
	}
	if p.cfg.TTSModel == "" {
		p.cfg.TTSModel = defaultGeminiTTSModel
	}
	return p
}

// Name identifies the provider in logs.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Prompt builds the transcription instruction for a language selector.
func Prompt(instruction string) string {
	return "TRANSCRIPTION PIPELINE:\n" +
		"1. Language: " + instruction + ".\n" +
		"2. Structure: JSON array of objects.\n" +
		fmt.Sprintf("3. Rules: Max %d words per segment. High-impact phrasing. No emojis unless requested.\n", MaxWordsPerSegment) +
		"4. Keys: \"start\", \"end\", \"text\"."
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseSchema     *schema       `json:"responseSchema,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type schema struct {
	Type       string             `json:"type"`
	Items      *schema            `json:"items,omitempty"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func segmentSchema() *schema {
	return &schema{
		Type: "ARRAY",
		Items: &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"start": {Type: "NUMBER"},
				"end":   {Type: "NUMBER"},
				"text":  {Type: "STRING"},
			},
			Required: []string{"start", "end", "text"},
		},
	}
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, summarizePayloadSnippet(e.Body))
}

// Transcribe sends the video inline and parses the JSON segment list.
func (p *GeminiProvider) Transcribe(ctx context.Context, req Request) ([]Segment, error) {
	if len(req.Video) == 0 {
		return nil, ErrEmptyVideo
	}
	if p.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key required", ErrRequestFailed)
	}
	instruction := req.Instruction
	if instruction == "" {
		instruction = req.Language
	}
	payload := generateRequest{
		Contents: []content{{Parts: []part{
			{InlineData: &inlineData{MimeType: req.MimeType, Data: base64.StdEncoding.EncodeToString(req.Video)}},
			{Text: Prompt(instruction)},
		}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   segmentSchema(),
		},
	}
	resp, body, err := p.generate(ctx, p.cfg.Model, payload)
	if err != nil {
		return nil, err
	}
	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: no text in response (%s)", ErrMalformedResponse, describeEmpty(resp, body))
	}
	return parseSegments(text)
}

// Narrate synthesizes text with a prebuilt voice and returns the audio bytes.
func (p *GeminiProvider) Narrate(ctx context.Context, text string, voice Voice) (Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Audio{}, errors.New("narrate: text required")
	}
	if p.cfg.APIKey == "" {
		return Audio{}, fmt.Errorf("%w: gemini api key required", ErrRequestFailed)
	}
	if voice == "" {
		voice = VoiceKore
	}
	cfg := &generationConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig:       &speechConfig{},
	}
	cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = string(voice)
	payload := generateRequest{
		Contents:         []content{{Parts: []part{{Text: "Narrate with emotion: " + text}}}},
		GenerationConfig: cfg,
	}
	resp, body, err := p.generate(ctx, p.cfg.TTSModel, payload)
	if err != nil {
		return Audio{}, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].InlineData == nil {
		return Audio{}, fmt.Errorf("%w: no audio in response (%s)", ErrMalformedResponse, describeEmpty(resp, body))
	}
	inline := resp.Candidates[0].Content.Parts[0].InlineData
	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		return Audio{}, fmt.Errorf("%w: decode audio: %w", ErrMalformedResponse, err)
	}
	if len(data) == 0 {
		return Audio{}, fmt.Errorf("%w: empty audio", ErrMalformedResponse)
	}
	mime := inline.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return Audio{Data: data, MimeType: mime}, nil
}

func (p *GeminiProvider) generate(ctx context.Context, model string, payload generateRequest) (generateResponse, []byte, error) {
	var out generateResponse
	endpoint, err := url.JoinPath(p.cfg.BaseURL, "models", model+":generateContent")
	if err != nil {
		return out, nil, fmt.Errorf("gemini request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return out, nil, fmt.Errorf("gemini request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return out, nil, fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.cfg.APIKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, nil, ctxErr
		}
		return out, nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, nil, ctxErr
		}
		return out, nil, fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return out, body, fmt.Errorf("%w: %w", ErrRequestFailed, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, body, fmt.Errorf("%w: decode envelope: %w (snippet: %s)", ErrMalformedResponse, err, summarizePayloadSnippet(string(body)))
	}
	return out, body, nil
}

func responseText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		b.WriteString(pt.Text)
	}
	return strings.TrimSpace(b.String())
}

func describeEmpty(resp generateResponse, body []byte) string {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "blocked: " + resp.PromptFeedback.BlockReason
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		return "finish_reason=" + resp.Candidates[0].FinishReason
	}
	return "response_snippet=" + summarizePayloadSnippet(string(body))
}

// StatusCode extracts the HTTP status of a failed provider call, 0 when none.
func StatusCode(err error) int {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
