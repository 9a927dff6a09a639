package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CurrentFileName is the pointer the daemon keeps at its active log file.
const CurrentFileName = "capgenius.log"

const maxLineBytes = 1024 * 1024

// Filter selects log lines. The zero value matches everything.
type Filter struct {
	// Contains must appear in the line, e.g. a project ID. An ID also matches
	// the bracketed eight-character tag console lines carry.
	Contains string
	// Level drops lines below this level ("debug", "info", "warn", "error").
	Level string
}

// Match reports whether line passes f.
func (f Filter) Match(line string) bool {
	if f.Contains != "" && !strings.Contains(line, f.Contains) && !strings.Contains(line, consoleTag(f.Contains)) {
		return false
	}
	if floor := levelRank(f.Level); floor > 0 {
		if rank := lineLevel(line); rank > 0 && rank < floor {
			return false
		}
	}
	return true
}

func consoleTag(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "[" + id + "]"
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "dbg":
		return 1
	case "info", "inf":
		return 2
	case "warn", "warning", "wrn":
		return 3
	case "error", "err":
		return 4
	default:
		return 0
	}
}

// lineLevel finds the level in either handler's output: the pretty handler
// writes a bare upper-case token, the JSON handler a "level" field.
func lineLevel(line string) int {
	if strings.HasPrefix(line, "{") {
		idx := strings.Index(line, `"level":"`)
		if idx < 0 {
			return 0
		}
		rest := line[idx+len(`"level":"`):]
		if end := strings.IndexByte(rest, '"'); end > 0 {
			return levelRank(rest[:end])
		}
		return 0
	}
	for _, field := range strings.Fields(line) {
		if field != strings.ToUpper(field) {
			continue
		}
		if rank := levelRank(field); rank > 0 {
			return rank
		}
	}
	return 0
}

// CurrentPath returns the active daemon log in logDir.
func CurrentPath(logDir string) string {
	return filepath.Join(logDir, CurrentFileName)
}

// Last returns up to limit matching lines from the end of path together with
// the file offset to follow from. A missing file yields no lines.
func Last(path string, limit int, filter Filter) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if info, err := file.Stat(); err != nil {
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	} else if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}

	var ring []string
	if limit > 0 {
		ring = make([]string, 0, limit)
	}
	offset, err := scanLines(file, func(line string) {
		if limit <= 0 || !filter.Match(line) {
			return
		}
		if len(ring) == limit {
			copy(ring, ring[1:])
			ring = ring[:limit-1]
		}
		ring = append(ring, line)
	})
	if err != nil {
		return nil, 0, err
	}
	return ring, offset, nil
}

// Follow emits matching lines appended to path after offset, polling every
// interval until ctx ends. A file that shrinks, as after the daemon restarts
// and the pointer moves, is read again from the start.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, filter Filter, emit func(string)) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if offset == info.Size() {
		return offset, nil
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	read, err := scanLines(file, func(line string) {
		if filter.Match(line) {
			emit(line)
		}
	})
	if err != nil {
		return offset, err
	}
	return offset + read, nil
}

// scanLines calls fn for every complete line and returns the number of bytes
// consumed. A trailing partial line is left for the next read.
func scanLines(r io.Reader, fn func(string)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineBytes {
			line = line[:maxLineBytes]
		}
		fn(strings.TrimRight(line, "\r\n"))
	}
}
