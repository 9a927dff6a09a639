package editor

import (
	"context"
	"log/slog"

	"capgenius/internal/config"
	"capgenius/internal/logging"
	"capgenius/internal/media"
	"capgenius/internal/notifications"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
	"capgenius/internal/transcribe"
)

// Stager writes uploads to disk.
type Stager interface {
	Stage(ctx context.Context, up media.Upload) (*media.Video, error)
}

// Generator performs one transcription request.
type Generator interface {
	Generate(ctx context.Context, req transcribe.Request) (transcribe.Result, error)
}

// Notifier is told how each generation ended. Cancelled generations are not
// reported.
type Notifier interface {
	GenerationCompleted(ctx context.Context, project string, captions int, lang string) error
	GenerationFailed(ctx context.Context, project, reason string) error
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Stager          Stager
	Generator       Generator
	Presets         *style.Registry
	Policy          timeline.Policy
	PixelsPerSecond float64
	DefaultLanguage string
	Notifier        Notifier
	Logger          *slog.Logger
}

// DepsFromConfig wires the default collaborators for cfg.
func DepsFromConfig(cfg *config.Config, logger *slog.Logger) (Deps, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	pipeline, err := transcribe.NewPipelineFromConfig(cfg, logger)
	if err != nil {
		return Deps{}, err
	}
	presets, err := style.LoadRegistry(cfg.Styles.PresetsFile)
	if err != nil {
		return Deps{}, err
	}
	logger.Debug("caption generation configured",
		logging.String("provider", pipeline.ProviderName()),
		logging.Duration("timeout", pipeline.Timeout()),
		logging.Int("presets", len(presets.List())),
	)
	return Deps{
		Stager:    media.NewStager(cfg, logger),
		Generator: pipeline,
		Presets:   presets,
		Policy: timeline.Policy{
			MinDuration:      cfg.Timeline.MinDuration,
			CommitMode:       timeline.CommitMode(cfg.Timeline.CommitMode),
			RollbackOnCancel: cfg.Timeline.RollbackOnCancel,
			PreventOverlap:   cfg.Timeline.PreventOverlap,
		},
		PixelsPerSecond: cfg.Timeline.PixelsPerSecond,
		DefaultLanguage: cfg.Transcription.DefaultLanguage,
		Notifier:        notifications.NewService(cfg),
		Logger:          logger,
	}, nil
}

func (d Deps) withDefaults() Deps {
	if d.Presets == nil {
		d.Presets = style.NewRegistry()
	}
	if d.PixelsPerSecond <= 0 {
		d.PixelsPerSecond = timeline.DefaultPixelsPerSecond
	}
	if d.DefaultLanguage == "" {
		d.DefaultLanguage = "en"
	}
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return d
}
