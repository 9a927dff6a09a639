package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"capgenius/internal/api"
	"capgenius/internal/config"
	"capgenius/internal/deps"
	"capgenius/internal/editor"
	"capgenius/internal/logging"
	"capgenius/internal/preflight"
	"capgenius/internal/project"
	"capgenius/internal/transcribe"
)

// Daemon owns the editor sessions and the HTTP API, and enforces
// single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *project.Store
	manager *editor.Manager
	api     *api.Server

	lockPath string
	lock     *flock.Flock

	mu        sync.Mutex
	running   atomic.Bool
	cancel    context.CancelFunc
	startedAt time.Time
	closeOnce sync.Once
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	StartedAt    time.Time          `json:"started_at,omitzero"`
	APIAddress   string             `json:"api_address,omitempty"`
	LockFilePath string             `json:"lock_file_path"`
	Database     project.Health     `json:"database"`
	Checks       []preflight.Result `json:"checks"`
	Dependencies []deps.Status      `json:"dependencies"`
}

// New constructs a daemon around an open project store. The daemon takes
// ownership of store and closes it in Close.
func New(cfg *config.Config, store *project.Store, manager *editor.Manager, narrator transcribe.Narrator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil {
		return nil, errors.New("daemon requires config, store, and editor manager")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	server, err := api.New(api.Options{
		Config:   cfg,
		Manager:  manager,
		Store:    store,
		Narrator: narrator,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create api server: %w", err)
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		manager:  manager,
		api:      server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and starts serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another capgenius daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	d.startedAt = time.Now().UTC()
	d.running.Store(true)
	d.logger.Info("capgenius daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api_address", d.api.Addr()),
	)
	return nil
}

// Stop stops serving and releases the daemon lock. Sessions stay open.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("capgenius daemon stopped")
}

// Close stops the daemon, suspends every session and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	var err error
	d.closeOnce.Do(func() {
		err = errors.Join(d.manager.Close(), d.store.Close())
	})
	return err
}

// Addr returns the API listen address while running.
func (d *Daemon) Addr() string {
	return d.api.Addr()
}

// Status returns the current daemon status including local preflight checks.
func (d *Daemon) Status(ctx context.Context) Status {
	d.mu.Lock()
	startedAt := d.startedAt
	d.mu.Unlock()

	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Checks:       preflight.RunAll(ctx, d.cfg, false),
		Dependencies: preflight.CheckSystemDeps(d.cfg),
	}
	if status.Running {
		status.StartedAt = startedAt
		status.APIAddress = d.api.Addr()
	}
	health, err := d.store.CheckHealth(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "database health check failed", "database_health_failed", logging.Error(err))
	}
	status.Database = health
	return status
}
