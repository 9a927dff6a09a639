package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.Provider {
	case "gemini", "whisper":
	default:
		return fmt.Errorf("transcription.provider: unsupported value %q (expected gemini or whisper)", c.Transcription.Provider)
	}
	if err := ensurePositiveMap(map[string]int{
		"transcription.timeout_seconds": c.Transcription.TimeoutSeconds,
		"transcription.max_video_mb":    c.Transcription.MaxVideoMB,
		"gemini.timeout_seconds":        c.Gemini.TimeoutSeconds,
	}); err != nil {
		return err
	}
	return nil
}

// ValidateCredentials checks that the selected transcription provider has an
// API key. It is separate from Validate so offline commands (export, config)
// work without credentials.
func (c *Config) ValidateCredentials() error {
	switch c.Transcription.Provider {
	case "whisper":
		if c.Whisper.APIKey == "" {
			return errors.New("whisper.api_key is required when transcription.provider is whisper (or set OPENAI_API_KEY)")
		}
	default:
		if c.Gemini.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = "~/.config/capgenius/config.toml"
			}
			return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'capgenius config init')", defaultPath)
		}
	}
	return nil
}

func (c *Config) validateTimeline() error {
	if c.Timeline.PixelsPerSecond <= 0 || math.IsNaN(c.Timeline.PixelsPerSecond) || math.IsInf(c.Timeline.PixelsPerSecond, 0) {
		return errors.New("timeline.pixels_per_second must be positive")
	}
	if c.Timeline.MinDuration <= 0 || math.IsNaN(c.Timeline.MinDuration) {
		return errors.New("timeline.min_duration must be positive")
	}
	switch c.Timeline.CommitMode {
	case "live", "release":
	default:
		return fmt.Errorf("timeline.commit_mode: unsupported value %q (expected live or release)", c.Timeline.CommitMode)
	}
	return nil
}

func (c *Config) validateExport() error {
	name := c.Export.Filename
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("export.filename must be a bare file name, got %q", name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".srt") {
		return fmt.Errorf("export.filename must end in .srt, got %q", name)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
