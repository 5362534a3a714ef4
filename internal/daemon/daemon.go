package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"minute/internal/config"
	"minute/internal/events"
	"minute/internal/logging"
	"minute/internal/notifications"
	"minute/internal/recorder"
	"minute/internal/session"
)

// Daemon coordinates the recording services and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *session.Store
	manager *recorder.Manager
	coord   *recorder.Coordinator

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *session.Store, manager *recorder.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || manager == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, manager, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "minute.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		manager:  manager,
		coord:    recorder.NewCoordinator(manager, logger),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, sweeps sessions stranded by a previous
// process, and begins watching for device removal.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another minute daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if _, err := d.manager.Recover(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return err
	}
	if err := d.coord.Start(runCtx); err != nil {
		// Non-fatal by contract, but keep the log trail.
		d.logger.Warn("device monitor unavailable", logging.Error(err))
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("minute daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop finalizes any active recording, stops background watchers, and
// releases the instance lock. Returns true when the audio file was finalized
// cleanly.
func (d *Daemon) Stop(ctx context.Context) bool {
	if !d.running.Load() {
		return true
	}

	d.coord.Stop()
	finalized := d.manager.HandleShutdown(ctx)
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("minute daemon stopped", logging.Bool("finalized", finalized))
	return finalized
}

// Close stops the daemon and releases its resources.
func (d *Daemon) Close() error {
	d.Stop(context.Background())
	d.manager.Close()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether Start has completed and Stop has not.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Manager exposes the session manager for the IPC surface.
func (d *Daemon) Manager() *recorder.Manager {
	return d.manager
}

// Events subscribes to session lifecycle events.
func (d *Daemon) Events() (<-chan events.Event, func()) {
	return d.manager.Events()
}

// SessionStats returns per-status session counts.
func (d *Daemon) SessionStats(ctx context.Context) (map[session.Status]int, error) {
	return d.store.Stats(ctx)
}

// DatabasePath returns the SQLite path backing the session store.
func (d *Daemon) DatabasePath() string {
	return d.cfg.DatabasePath()
}

// TestNotification sends a test push through the configured notifier.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
