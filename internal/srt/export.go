package srt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"capgenius/internal/captions"
)

// ErrNothingToExport is returned when there are no captions to write.
var ErrNothingToExport = errors.New("no captions to export")

// Export writes the rendered captions to dir/filename and returns the path.
// The write goes through a temp file and rename under an advisory lock, so a
// concurrent export never leaves a torn file. An empty caption list returns
// ErrNothingToExport and creates nothing.
func Export(items []captions.Caption, dir, filename string) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToExport
	}
	if strings.TrimSpace(filename) == "" {
		filename = DefaultFilename
	}
	if filename != filepath.Base(filename) {
		return "", fmt.Errorf("export filename %q must not contain directories", filename)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	target := filepath.Join(dir, filename)
	return target, WriteFile(target, Render(items))
}

// WriteFile atomically replaces path with content.
func WriteFile(path, content string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write subtitles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close subtitles: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod subtitles: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename subtitles: %w", err)
	}
	return nil
}
