package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"capgenius/internal/config"
	"capgenius/internal/logging"
	"capgenius/internal/media/ffprobe"
	"capgenius/internal/preflight"
	"capgenius/internal/services"
	"capgenius/internal/textutil"
)

// Upload is a video arriving from the API or CLI.
type Upload struct {
	Name     string
	MimeType string
	// Size is the declared length, or -1 when unknown.
	Size int64
	Body io.Reader
}

// Stager writes uploads into the video directory.
type Stager struct {
	dir      string
	maxBytes int64
	ffprobe  string
	logger   *slog.Logger
}

// NewStager builds a stager from cfg.
func NewStager(cfg *config.Config, logger *slog.Logger) *Stager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stager{
		dir:      cfg.VideoDir(),
		maxBytes: cfg.MaxVideoBytes(),
		ffprobe:  cfg.FFprobeBinary(),
		logger:   logging.NewComponentLogger(logger, "media"),
	}
}

// Stage validates the MIME type, copies the body to disk and probes its
// duration. A non-video MIME type fails before anything is written.
func (s *Stager) Stage(ctx context.Context, up Upload) (*Video, error) {
	if err := ValidateMIME(up.MimeType); err != nil {
		return nil, err
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return nil, s.tooLarge()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "media", "stage", "create video directory", err)
	}
	if up.Size > 0 {
		if free, err := preflight.FreeBytes(s.dir); err == nil && free < uint64(up.Size) {
			return nil, services.Wrap(services.ErrTransient, "media", "stage",
				fmt.Sprintf("only %s free for a %s upload", humanize.Bytes(free), humanize.Bytes(uint64(up.Size))), nil)
		}
	}

	file, err := os.CreateTemp(s.dir, "video-*"+safeExt(up.Name))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "media", "stage", "create staging file", err)
	}
	path := file.Name()
	discard := func() {
		_ = file.Close()
		_ = os.Remove(path)
	}

	reader := up.Body
	if s.maxBytes > 0 {
		reader = io.LimitReader(up.Body, s.maxBytes+1)
	}
	written, err := io.Copy(file, contextReader{ctx: ctx, r: reader})
	if err != nil {
		discard()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransient, "media", "stage", "write staging file", err)
	}
	if s.maxBytes > 0 && written > s.maxBytes {
		discard()
		return nil, s.tooLarge()
	}
	if written == 0 {
		discard()
		return nil, services.Wrap(services.ErrValidation, "media", "stage", "empty upload", ErrNotVideo)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return nil, services.Wrap(services.ErrTransient, "media", "stage", "close staging file", err)
	}

	report, probed := s.probe(ctx, path)
	if probed && !report.HasVideo() {
		_ = os.Remove(path)
		return nil, services.Wrap(services.ErrValidation, "media", "stage", "upload has no video stream", ErrNotVideo)
	}

	video := &Video{
		Path:     path,
		Name:     displayName(up.Name, path),
		MimeType: up.MimeType,
		Size:     written,
		Duration: report.DurationSeconds(),
	}
	width, height := report.Dimensions()
	s.logger.Info("video staged",
		logging.String("video", video.Name),
		logging.String("mime_type", video.MimeType),
		logging.String("size", humanize.Bytes(uint64(written))),
		logging.Float64("duration_seconds", video.Duration),
		logging.Int("width", width),
		logging.Int("height", height),
	)
	return video, nil
}

// probe reports false when ffprobe is unavailable or cannot read the file.
// The upload is then accepted on its MIME type alone with an unknown duration;
// the client may still report one from its own player.
func (s *Stager) probe(ctx context.Context, path string) (ffprobe.Result, bool) {
	result, err := ffprobe.Inspect(ctx, s.ffprobe, path)
	if err != nil {
		s.logger.Debug("video probe skipped", logging.Error(err))
		return ffprobe.Result{}, false
	}
	return result, true
}

func (s *Stager) tooLarge() error {
	return services.Wrap(services.ErrValidation, "media", "stage",
		fmt.Sprintf("video larger than %s", humanize.IBytes(uint64(s.maxBytes))), ErrTooLarge)
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func displayName(name, path string) string {
	if base := textutil.SanitizeFileName(filepath.Base(strings.TrimSpace(name))); base != "" {
		return base
	}
	return filepath.Base(path)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
