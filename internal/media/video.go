package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Video is a staged upload. The file stays on disk until Release.
type Video struct {
	Path     string  `json:"path"`
	Name     string  `json:"name"`
	MimeType string  `json:"mime_type"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration"`

	once     sync.Once
	mu       sync.Mutex
	released bool
}

// Open adopts an already staged file, as recorded by a saved project.
func Open(path, name, mimeType string, duration float64) (*Video, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open staged video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open staged video: %s is a directory", path)
	}
	return &Video{Path: path, Name: name, MimeType: mimeType, Size: info.Size(), Duration: duration}, nil
}

// Bytes reads the staged file.
func (v *Video) Bytes() ([]byte, error) {
	if v == nil {
		return nil, ErrReleased
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return nil, ErrReleased
	}
	data, err := os.ReadFile(v.Path)
	if err != nil {
		return nil, fmt.Errorf("read staged video: %w", err)
	}
	return data, nil
}

// Released reports whether Release has run.
func (v *Video) Released() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.released
}

// Release removes the staged file. Only the first call has any effect.
func (v *Video) Release() error {
	if v == nil {
		return nil
	}
	var err error
	v.once.Do(func() {
		v.mu.Lock()
		v.released = true
		v.mu.Unlock()
		if removeErr := os.Remove(v.Path); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
			err = fmt.Errorf("release staged video: %w", removeErr)
		}
	})
	return err
}
