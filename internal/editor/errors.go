package editor

import (
	"errors"
	"fmt"

	"capgenius/internal/captions"
	"capgenius/internal/services"
	"capgenius/internal/style"
	"capgenius/internal/timeline"
)

// GenerationFailedPrefix starts every caption generation failure message.
const GenerationFailedPrefix = "Caption generation failed: "

var (
	// ErrBusy is returned when a generation or upload is already running.
	ErrBusy = errors.New("session busy")
	// ErrNoVideo is returned when an operation needs a staged video.
	ErrNoVideo = errors.New("no video loaded")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session closed")
)

// classify tags domain errors with the service marker used for status mapping.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrTimeout),
		errors.Is(err, services.ErrExternalTool), errors.Is(err, services.ErrConfiguration),
		errors.Is(err, services.ErrTransient):
		return err
	case errors.Is(err, captions.ErrNotFound), errors.Is(err, style.ErrUnknownPreset):
		return services.Wrap(services.ErrNotFound, "editor", op, "", err)
	case errors.Is(err, ErrBusy), errors.Is(err, timeline.ErrOverlap), errors.Is(err, ErrClosed):
		return services.Wrap(services.ErrConflict, "editor", op, "", err)
	case errors.Is(err, ErrNoVideo), errors.Is(err, captions.ErrInvalid),
		errors.Is(err, style.ErrInvalidStyle), errors.Is(err, timeline.ErrUnknownMode):
		return services.Wrap(services.ErrValidation, "editor", op, "", err)
	default:
		return fmt.Errorf("editor: %s: %w", op, err)
	}
}
