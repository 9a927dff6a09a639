package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"capgenius/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory with every
// directory created. It sets a placeholder Gemini key so credential checks pass.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Gemini.APIKey = "test"
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithGeminiKey overrides the Gemini API key.
func WithGeminiKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.APIKey = key
	}
}

// WithGeminiBaseURL points the Gemini client at a test server.
func WithGeminiBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gemini.BaseURL = url
	}
}

// WithMaxVideoMB sets the upload size limit.
func WithMaxVideoMB(mb int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.MaxVideoMB = mb
	}
}

// WithTimeline overrides the timeline editing policy.
func WithTimeline(commitMode string, rollbackOnCancel, preventOverlap bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Timeline.CommitMode = commitMode
		b.cfg.Timeline.RollbackOnCancel = rollbackOnCancel
		b.cfg.Timeline.PreventOverlap = preventOverlap
	}
}

// WithAPIToken requires a bearer token on the HTTP API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithFFprobeDuration installs a stub ffprobe on PATH that reports a video of
// the given length for any input.
func WithFFprobeDuration(seconds float64) ConfigOption {
	return WithFFprobeReport(fmt.Sprintf(`{"streams":[{"index":0,"codec_type":"video","width":1080,"height":1920}],"format":{"duration":"%.6f"}}`, seconds))
}

// WithFFprobeReport installs a stub ffprobe that prints report for any input.
func WithFFprobeReport(report string) ConfigOption {
	return func(b *configBuilder) {
		script := "#!/bin/sh\ncat <<'JSON'\n" + report + "\nJSON\n"
		b.installStub("ffprobe", script)
	}
}

// WithoutFFprobe installs a failing ffprobe stub so probing reports no duration.
func WithoutFFprobe() ConfigOption {
	return func(b *configBuilder) {
		b.installStub("ffprobe", "#!/bin/sh\nexit 1\n")
	}
}

func (b *configBuilder) installStub(name, script string) {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
