package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"capgenius/internal/api"
	"capgenius/internal/config"
	"capgenius/internal/daemonrun"
	"capgenius/internal/deps"
	"capgenius/internal/preflight"
	"capgenius/internal/project"
)

// ErrDaemonNotRunning indicates the daemon API is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Snapshot is the combined daemon and environment status.
type Snapshot struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid,omitempty"`
	APIAddress   string             `json:"api_address,omitempty"`
	Provider     string             `json:"provider"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
	Database     project.Health     `json:"database"`
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int  `json:"pid"`
	ForcedKill bool `json:"forced_kill"`
}

// PIDPath returns the pid file written by a running daemon.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, daemonrun.PIDFileName)
}

// ReadPID returns the pid recorded in path, or 0 when the file is absent.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	pidStr := strings.TrimSpace(string(data))
	if pidStr == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon pid file %q holds %q", path, pidStr)
	}
	return pid, nil
}

// BaseURL derives the loopback URL of the daemon API from paths.api_bind.
func BaseURL(cfg *config.Config) (string, error) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(cfg.Paths.APIBind))
	if err != nil {
		return "", fmt.Errorf("parse api bind %q: %w", cfg.Paths.APIBind, err)
	}
	if port == "" || port == "0" {
		return "", fmt.Errorf("api bind %q has no fixed port", cfg.Paths.APIBind)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

// Probe fetches /api/status from the running daemon.
func Probe(ctx context.Context, cfg *config.Config) (*api.StatusResponse, error) {
	base, err := BaseURL(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/status", nil)
	if err != nil {
		return nil, err
	}
	if token := cfg.Paths.APIToken; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDaemonNotRunning, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon status: HTTP %d", resp.StatusCode)
	}
	var status api.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode daemon status: %w", err)
	}
	return &status, nil
}

// BuildStatusSnapshot reports the daemon status, falling back to local checks
// and a direct database read when the daemon is not reachable.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config) (Snapshot, error) {
	if cfg == nil {
		return Snapshot{}, errors.New("configuration not available")
	}
	snap := Snapshot{Provider: cfg.Transcription.Provider}
	snap.PID, _ = ReadPID(PIDPath(cfg))

	remote, err := Probe(ctx, cfg)
	if err == nil {
		snap.Running = true
		snap.APIAddress, _ = BaseURL(cfg)
		snap.Provider = remote.Provider
		snap.Checks = remote.Checks
		snap.Dependencies = remote.Dependencies
		snap.Database = remote.Database
		return snap, nil
	}

	snap.PID = 0
	snap.Checks = preflight.RunAll(ctx, cfg, false)
	snap.Dependencies = preflight.CheckSystemDeps(cfg)
	snap.Database = project.Health{DBPath: cfg.ProjectDBPath()}
	if _, statErr := os.Stat(cfg.ProjectDBPath()); statErr != nil {
		return snap, nil
	}
	store, err := project.Open(cfg)
	if err != nil {
		return snap, err
	}
	defer store.Close()
	health, err := store.CheckHealth(ctx)
	if err != nil {
		return snap, err
	}
	snap.Database = health
	return snap, nil
}

// Stop sends SIGTERM to the daemon recorded in the pid file and kills it if it
// is still alive after gracePeriod.
func Stop(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	pidPath := PIDPath(cfg)
	pid, err := ReadPID(pidPath)
	if err != nil {
		return StopResult{}, err
	}
	if pid == 0 || !processAlive(pid) {
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return StopResult{}, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	result := StopResult{PID: pid}
	if waitForExit(pid, gracePeriod) {
		return result, nil
	}
	if err := proc.Kill(); err != nil {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	if err := os.Remove(pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file %q: %w", pidPath, err)
	}
	result.ForcedKill = true
	return result, nil
}

func waitForExit(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !processAlive(pid)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
