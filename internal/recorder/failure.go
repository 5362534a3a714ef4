package recorder

import (
	"context"
	"errors"
	"time"

	"minute/internal/capture"
	"minute/internal/events"
	"minute/internal/logging"
	"minute/internal/session"
)

// HandleMicDisconnect recovers the identified session after its capture
// stream died. It fires at most once per session: a disconnect racing a
// manual stop, or a second device error for the same stream, is a no-op.
func (m *Manager) HandleMicDisconnect(id string, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.active
	if state == nil || state.sess.ID != id {
		return
	}
	if _, ok := session.Next(state.sess.Status, session.EventMicDisconnect); !ok {
		return
	}
	if state.failureHandled.Swap(true) {
		return
	}

	if err := m.recorder.Stop(); err != nil && !errors.Is(err, capture.ErrNotRunning) {
		m.logger.Debug("capture stop after disconnect", logging.Error(err))
	}
	state.release()
	m.finalizeHandle(state, "mic_disconnect")

	message := session.ErrMicDisconnected.Error()
	if cause != nil {
		message = message + ": " + cause.Error()
	}
	duration := int64(time.Since(state.startedAt).Round(time.Second) / time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.store.MarkFailed(ctx, state.sess.ID, message, &duration); err != nil {
		logging.ErrorWithContext(m.logger, "failed to persist disconnect failure", "mic_disconnect",
			logging.String(logging.FieldSessionID, state.sess.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session row is stale; startup recovery will mark it interrupted"),
		)
	}
	m.active = nil

	logging.WarnWithContext(m.logger, "microphone disconnected", "mic_disconnect",
		logging.String(logging.FieldSessionID, state.sess.ID),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "partial audio was preserved; retry transcription once reviewed"),
		logging.String(logging.FieldImpact, "recording ended early"),
	)

	sess, err := m.store.GetByID(ctx, state.sess.ID)
	if err != nil || sess == nil {
		fallback := state.sess
		fallback.Status = session.StatusFailed
		fallback.ErrorMessage = message
		sess = &fallback
	}
	m.bus.Publish(events.KindSessionFailed, *sess)
	title := sess.Title
	m.notifyAsync(func(ctx context.Context) error {
		return m.notifier.NotifySessionFailed(ctx, title, message)
	})
}

// HandleShutdown finalizes an active recording ahead of process exit and
// persists it as interrupted with partial audio retained. The finalize uses
// the shutdown deadline, which stays below the finalize deadline so the
// process can still exit inside its own kill window. Returns true when the
// audio file was finalized cleanly; callers may use false to delay exit.
func (m *Manager) HandleShutdown(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.active
	if state == nil {
		return true
	}
	if _, ok := session.Next(state.sess.Status, session.EventAppShutdown); !ok {
		return true
	}
	state.failureHandled.Store(true)

	if err := m.recorder.Stop(); err != nil && !errors.Is(err, capture.ErrNotRunning) {
		m.logger.Debug("capture stop during shutdown", logging.Error(err))
	}
	state.release()

	finalized := true
	if err := state.handle.FinalizeWithTimeout(m.cfg.ShutdownTimeout()); err != nil {
		finalized = false
		logging.WarnWithContext(m.logger, "finalize incomplete at shutdown", "shutdown",
			logging.String(logging.FieldSessionID, state.sess.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "trailing samples may be missing from the recording"),
		)
	}

	duration := int64(time.Since(state.startedAt).Round(time.Second) / time.Second)
	if err := m.store.MarkInterrupted(ctx, state.sess.ID, duration); err != nil {
		logging.ErrorWithContext(m.logger, "failed to persist interrupted state", "shutdown",
			logging.String(logging.FieldSessionID, state.sess.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session row is stale; startup recovery will mark it interrupted"),
		)
	}
	m.active = nil

	m.logger.Info("recording interrupted by shutdown",
		logging.String(logging.FieldSessionID, state.sess.ID),
		logging.Int64("duration_seconds", duration),
		logging.Bool("finalized", finalized),
	)
	title := state.sess.Title
	m.notifyAsync(func(ctx context.Context) error {
		return m.notifier.NotifySessionInterrupted(ctx, title)
	})
	return finalized
}
