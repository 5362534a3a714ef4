package recorder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"minute/internal/capture"
	"minute/internal/logging"
	"minute/internal/session"
)

// Coordinator funnels asynchronous device-removal and shutdown signals into
// the manager's state transitions. Each signal path is debounced per session
// by the manager itself; the coordinator only routes.
type Coordinator struct {
	manager *Manager
	monitor *capture.DeviceMonitor
	logger  *slog.Logger
}

// NewCoordinator wires a udev device monitor to the manager's disconnect
// handler.
func NewCoordinator(manager *Manager, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Coordinator{
		manager: manager,
		logger:  logging.NewComponentLogger(logger, "recovery"),
	}
	c.monitor = capture.NewDeviceMonitor(logger, c.onDeviceRemoved)
	return c
}

// Start begins watching for sound device removal. A monitor that cannot
// connect is non-fatal; disconnects are still caught when the capture stream
// dies.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.monitor.Start(ctx)
}

// Stop tears the device monitor down.
func (c *Coordinator) Stop() {
	c.monitor.Stop()
}

// RunUntil blocks until ctx is cancelled, then performs the shutdown path on
// any active recording. Returns true when the audio file was finalized
// cleanly before the deadline.
func (c *Coordinator) RunUntil(ctx context.Context) bool {
	<-ctx.Done()
	c.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.manager.cfg.ShutdownTimeout()+5*time.Second)
	defer cancel()
	finalized := c.manager.HandleShutdown(shutdownCtx)
	if !finalized {
		c.logger.Warn("shutdown finalize did not complete in time")
	}
	return finalized
}

func (c *Coordinator) onDeviceRemoved(device string) {
	sess, err := c.manager.GetCurrent(context.Background())
	if err != nil {
		c.logger.Warn("device removal observed but active session lookup failed",
			logging.String(logging.FieldDevice, device),
			logging.Error(err),
		)
		return
	}
	if sess == nil || sess.Status != session.StatusRecording {
		return
	}
	c.logger.Warn("sound device removed during recording",
		logging.String(logging.FieldDevice, device),
		logging.String(logging.FieldSessionID, sess.ID),
	)
	c.manager.HandleMicDisconnect(sess.ID, errors.New("sound device removed: "+device))
}
