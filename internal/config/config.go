package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Gemini contains configuration for the Gemini generative API.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TTSModel       string `toml:"tts_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Whisper contains configuration for the OpenAI-compatible Whisper provider.
type Whisper struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// Transcription contains configuration for the caption generation pipeline.
type Transcription struct {
	// Provider selects the backend: "gemini" (default) or "whisper".
	Provider        string `toml:"provider"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	MaxVideoMB      int    `toml:"max_video_mb"`
	DefaultLanguage string `toml:"default_language"`
}

// Timeline contains the drag/resize policy for the timeline editor.
type Timeline struct {
	PixelsPerSecond float64 `toml:"pixels_per_second"`
	MinDuration     float64 `toml:"min_duration"`
	// CommitMode is "live" (every pointer move commits) or "release".
	CommitMode       string `toml:"commit_mode"`
	RollbackOnCancel bool   `toml:"rollback_on_cancel"`
	PreventOverlap   bool   `toml:"prevent_overlap"`
}

// Styles contains caption style configuration.
type Styles struct {
	PresetsFile string `toml:"presets_file"`
}

// Export contains subtitle export settings.
type Export struct {
	Filename string `toml:"filename"`
}

// Notifications contains ntfy settings for generation alerts.
type Notifications struct {
	// NtfyTopic is the full topic URL; empty disables notifications.
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for capgenius.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories, API bind address and token
//   - Gemini: default transcription and narration backend
//   - Whisper: alternative transcription backend
//   - Transcription: provider choice, timeout budget, upload limits
//   - Timeline: drag/resize editing policy
//   - Styles: user preset file
//   - Export: SRT output naming
//   - Notifications: ntfy alerts when generation finishes
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Gemini        Gemini        `toml:"gemini"`
	Whisper       Whisper       `toml:"whisper"`
	Transcription Transcription `toml:"transcription"`
	Timeline      Timeline      `toml:"timeline"`
	Styles        Styles        `toml:"styles"`
	Export        Export        `toml:"export"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/capgenius/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("capgenius.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.VideoDir(), c.ExportDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// VideoDir is where uploaded videos are staged while a project is open.
func (c *Config) VideoDir() string {
	return filepath.Join(c.Paths.DataDir, "videos")
}

// ExportDir is the default destination for exported subtitle files.
func (c *Config) ExportDir() string {
	return filepath.Join(c.Paths.DataDir, "exports")
}

// ProjectDBPath returns the SQLite database holding editing projects.
func (c *Config) ProjectDBPath() string {
	return filepath.Join(c.Paths.DataDir, "projects.db")
}

// LockPath returns the daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "capgenius.lock")
}

// FFprobeBinary returns the ffprobe executable name used for video probing.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// MaxVideoBytes converts the configured upload limit to bytes.
func (c *Config) MaxVideoBytes() int64 {
	return int64(c.Transcription.MaxVideoMB) * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
