package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"capgenius/internal/captions"
	"capgenius/internal/config"
	"capgenius/internal/language"
	"capgenius/internal/logging"
	"capgenius/internal/services"
)

// DefaultTimeout bounds a single transcription request.
const DefaultTimeout = 300 * time.Second

// Result is a successful transcription. Captions may be empty.
type Result struct {
	Captions []captions.Caption `json:"captions"`
	Language string             `json:"language"`
	Provider string             `json:"provider"`
	Elapsed  time.Duration      `json:"elapsed"`
}

// Pipeline validates requests, calls the provider once, and converts the
// reply into captions.
type Pipeline struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
	newID    func() string
}

// PipelineOption customizes a pipeline.
type PipelineOption func(*Pipeline)

// WithTimeout sets the request budget. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithIDGenerator overrides caption ID minting (tests).
func WithIDGenerator(fn func() string) PipelineOption {
	return func(p *Pipeline) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// NewPipeline wraps provider.
func NewPipeline(provider Provider, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		provider: provider,
		timeout:  DefaultTimeout,
		logger:   logging.NewNop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "transcribe")
	return p
}

// ProviderName reports the backing provider.
func (p *Pipeline) ProviderName() string {
	return p.provider.Name()
}

// Timeout reports the request budget.
func (p *Pipeline) Timeout() time.Duration {
	return p.timeout
}

// Generate performs one transcription request. Errors wrap one of
// services.ErrValidation, services.ErrTimeout, ErrMalformedResponse or
// ErrRequestFailed; cancellation returns context.Canceled.
func (p *Pipeline) Generate(ctx context.Context, req Request) (Result, error) {
	code, err := language.Normalize(req.Language)
	if err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "transcribe", "resolve language", "unsupported language", err)
	}
	if len(req.Video) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "transcribe", "read video", "no video loaded", ErrEmptyVideo)
	}
	req.Language = code
	req.Instruction = language.Instruction(code)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logger := logging.WithContext(ctx, p.logger)
	logger.Info("transcription requested",
		logging.String("provider", p.provider.Name()),
		logging.String("language", code),
		logging.Int("video_bytes", len(req.Video)),
		logging.Duration("timeout", p.timeout),
	)

	started := time.Now()
	segments, err := p.provider.Transcribe(ctx, req)
	elapsed := time.Since(started)
	if err != nil {
		err = p.classify(ctx, err)
		logging.WarnWithContext(logger, "transcription failed", "transcription_failed",
			logging.Error(err),
			logging.Duration("elapsed", elapsed),
			logging.String(logging.FieldImpact, "captions left unchanged"),
			logging.String(logging.FieldErrorHint, "retry with a shorter clip or check the API key"),
		)
		return Result{}, err
	}

	items, err := p.toCaptions(segments)
	if err != nil {
		logging.WarnWithContext(logger, "transcription payload rejected", "transcription_malformed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "captions left unchanged"),
		)
		return Result{}, err
	}

	logger.Info("transcription completed",
		logging.Int("captions", len(items)),
		logging.Duration("elapsed", elapsed),
	)
	return Result{Captions: items, Language: code, Provider: p.provider.Name(), Elapsed: elapsed}, nil
}

func (p *Pipeline) classify(ctx context.Context, err error) error {
	var netErr interface{ Timeout() bool }
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.Canceled):
		return services.Wrap(services.ErrTimeout, "transcribe", "generate", fmt.Sprintf("no response within %s", p.timeout), err)
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		// The provider's own HTTP client gave up before the pipeline budget ran out.
		return services.Wrap(services.ErrTimeout, "transcribe", "generate", p.provider.Name()+" request timed out", err)
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.Is(err, ErrMalformedResponse):
		return services.Wrap(services.ErrExternalTool, "transcribe", "parse response", "unreadable reply", err)
	case errors.Is(err, ErrRequestFailed):
		return services.Wrap(services.ErrExternalTool, "transcribe", "request", p.provider.Name()+" request failed", err)
	default:
		return services.Wrap(services.ErrExternalTool, "transcribe", "request", p.provider.Name()+" request failed", fmt.Errorf("%w: %w", ErrRequestFailed, err))
	}
}

// toCaptions validates every segment and mints fresh IDs. Any invalid segment
// rejects the whole reply.
func (p *Pipeline) toCaptions(segments []Segment) ([]captions.Caption, error) {
	items := make([]captions.Caption, 0, len(segments))
	for i, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "transcribe", "validate segment",
				fmt.Sprintf("segment %d", i), fmt.Errorf("%w: %w", ErrMalformedResponse, err))
		}
		items = append(items, captions.Caption{
			ID:    p.newID(),
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Start < items[j].Start })
	return items, nil
}

func validateSegment(seg Segment) error {
	if math.IsNaN(seg.Start) || math.IsInf(seg.Start, 0) || math.IsNaN(seg.End) || math.IsInf(seg.End, 0) {
		return errors.New("non-finite timing")
	}
	if seg.Start < 0 {
		return fmt.Errorf("negative start %.3f", seg.Start)
	}
	if seg.End <= seg.Start {
		return fmt.Errorf("end %.3f not after start %.3f", seg.End, seg.Start)
	}
	if strings.TrimSpace(seg.Text) == "" {
		return errors.New("empty text")
	}
	return nil
}

// NewProviderFromConfig selects the configured transcription backend.
func NewProviderFromConfig(cfg *config.Config) (Provider, error) {
	switch cfg.Transcription.Provider {
	case "", "gemini":
		return NewGeminiProvider(geminiConfig(cfg)), nil
	case "whisper":
		return NewWhisperProvider(WhisperConfig{
			APIKey:  cfg.Whisper.APIKey,
			BaseURL: cfg.Whisper.BaseURL,
			Model:   cfg.Whisper.Model,
		}, nil), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "select provider",
			"unsupported provider", fmt.Errorf("%q", cfg.Transcription.Provider))
	}
}

// NewNarratorFromConfig returns the Gemini text-to-speech client.
func NewNarratorFromConfig(cfg *config.Config) Narrator {
	return NewGeminiProvider(geminiConfig(cfg))
}

// NewPipelineFromConfig wires provider, timeout and logger from configuration.
func NewPipelineFromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	provider, err := NewProviderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewPipeline(provider,
		WithTimeout(time.Duration(cfg.Transcription.TimeoutSeconds)*time.Second),
		WithLogger(logger),
	), nil
}

func geminiConfig(cfg *config.Config) GeminiConfig {
	return GeminiConfig{
		APIKey:         cfg.Gemini.APIKey,
		BaseURL:        cfg.Gemini.BaseURL,
		Model:          cfg.Gemini.Model,
		TTSModel:       cfg.Gemini.TTSModel,
		TimeoutSeconds: cfg.Gemini.TimeoutSeconds,
	}
}
