package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeWhisper()
	c.normalizeTranscription()
	c.normalizeTimeline()
	if err := c.normalizeStyles(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("CAPGENIUS_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		for _, key := range []string{"GEMINI_API_KEY", "API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.Gemini.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	c.Gemini.TTSModel = strings.TrimSpace(c.Gemini.TTSModel)
	if c.Gemini.TTSModel == "" {
		c.Gemini.TTSModel = defaultGeminiTTSModel
	}
}

func (c *Config) normalizeWhisper() {
	c.Whisper.APIKey = strings.TrimSpace(c.Whisper.APIKey)
	if c.Whisper.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Whisper.APIKey = strings.TrimSpace(value)
		}
	}
	c.Whisper.BaseURL = strings.TrimSpace(c.Whisper.BaseURL)
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = defaultTranscriptionProvider
	}
	c.Transcription.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.Transcription.DefaultLanguage))
	if c.Transcription.DefaultLanguage == "" {
		c.Transcription.DefaultLanguage = defaultTranscriptionLanguage
	}
}

func (c *Config) normalizeTimeline() {
	c.Timeline.CommitMode = strings.ToLower(strings.TrimSpace(c.Timeline.CommitMode))
	if c.Timeline.CommitMode == "" {
		c.Timeline.CommitMode = defaultTimelineCommitMode
	}
}

func (c *Config) normalizeStyles() error {
	if strings.TrimSpace(c.Styles.PresetsFile) == "" {
		c.Styles.PresetsFile = ""
		return nil
	}
	expanded, err := expandPath(strings.TrimSpace(c.Styles.PresetsFile))
	if err != nil {
		return fmt.Errorf("styles.presets_file: %w", err)
	}
	c.Styles.PresetsFile = expanded
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.Filename = strings.TrimSpace(c.Export.Filename)
	if c.Export.Filename == "" {
		c.Export.Filename = defaultExportFilename
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
