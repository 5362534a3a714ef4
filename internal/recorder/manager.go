package recorder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"minute/internal/capture"
	"minute/internal/config"
	"minute/internal/events"
	"minute/internal/logging"
	"minute/internal/notifications"
	"minute/internal/session"
	"minute/internal/transcribe"
	"minute/internal/wav"
)

// Manager coordinates the recording lifecycle for at most one active session.
type Manager struct {
	cfg      *config.Config
	store    *session.Store
	recorder capture.Recorder
	bridge   transcribe.Bridge
	notifier notifications.Service
	bus      *events.Bus
	logger   *slog.Logger

	// mu serializes the orchestration commands. Sample delivery never takes
	// it; the WAV handle's close flag keeps the two contexts safe.
	mu     sync.Mutex
	active *activeSession

	wg     sync.WaitGroup
	closed atomic.Bool
}

// activeSession tracks the in-memory state of the session holding the
// recording slot.
type activeSession struct {
	sess      session.Session
	handle    *wav.Handle
	startedAt time.Time
	// failureHandled debounces the disconnect path per session. The first of
	// stop, disconnect, or shutdown to run wins; later signals are no-ops.
	failureHandled atomic.Bool

	// failures receives at most one stream error from the capture goroutine.
	// The manager drains it on its own goroutine so recovery never runs on
	// the stream that is dying.
	failures    chan error
	finished    chan struct{}
	releaseOnce sync.Once
}

// release stops the failure drain for this session. Safe to call from every
// teardown path; only the first call counts.
func (s *activeSession) release() {
	s.releaseOnce.Do(func() {
		close(s.finished)
	})
}

// ManagerOption overrides a collaborator, primarily for tests.
type ManagerOption func(*Manager)

// WithRecorder replaces the capture backend.
func WithRecorder(rec capture.Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = rec }
}

// WithBridge replaces the transcription bridge.
func WithBridge(bridge transcribe.Bridge) ManagerOption {
	return func(m *Manager) { m.bridge = bridge }
}

// WithNotifier replaces the notification service.
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) { m.notifier = notifier }
}

// NewManager constructs a manager wired to the default collaborators: an
// arecord capture backend, the configured transcriber endpoint, and ntfy
// notifications. Options may replace any of them.
func NewManager(cfg *config.Config, store *session.Store, logger *slog.Logger, opts ...ManagerOption) (*Manager, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		store:    store,
		notifier: notifications.NewService(cfg),
		bus:      events.NewBus(),
		logger:   logging.NewComponentLogger(logger, "recorder"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.recorder == nil {
		m.recorder = capture.NewALSARecorder("")
	}
	if m.bridge == nil {
		bridge, err := transcribe.NewFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		if bridge != nil {
			m.bridge = bridge
		}
	}
	return m, nil
}

// Events returns a subscription to session lifecycle events along with its
// cancel function.
func (m *Manager) Events() (<-chan events.Event, func()) {
	return m.bus.Subscribe()
}

// Recover sweeps sessions left in recording or processing by a previous
// process into interrupted. Call once at startup before accepting commands.
func (m *Manager) Recover(ctx context.Context) (int64, error) {
	recovered, err := m.store.RecoverInterrupted(ctx)
	if err != nil {
		return 0, session.Wrap(session.ErrStorage, "recorder", "recover", "sweep interrupted sessions", err)
	}
	if recovered > 0 {
		m.logger.Info("recovered sessions from previous run",
			logging.Int64("count", recovered),
		)
	}
	return recovered, nil
}

// StartRecording creates a session and begins capturing audio. An empty title
// yields the timestamp default and an empty source falls back to the
// configured one. Fails with ErrAlreadyActive while another session holds the
// slot, without touching persisted state.
func (m *Manager) StartRecording(ctx context.Context, title string, source session.AudioSource) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, session.Wrap(session.ErrAlreadyActive, "recorder", "start", string(m.active.sess.Status), nil)
	}
	existing, err := m.store.FindActive(ctx)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "start", "check active session", err)
	}
	if existing != nil {
		return nil, session.Wrap(session.ErrAlreadyActive, "recorder", "start", string(existing.Status), nil)
	}

	if source == "" {
		parsed, ok := session.ParseAudioSource(m.cfg.Audio.Source)
		if !ok {
			parsed = session.SourceMicrophoneOnly
		}
		source = parsed
	}

	sess, err := m.store.Create(ctx, title, source)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "start", "create session", err)
	}

	writer, err := wav.Create(m.store.AbsolutePath(sess.AudioPath), m.wavFormat())
	if err != nil {
		m.discardSession(ctx, sess.ID)
		return nil, session.Wrap(session.ErrStorage, "recorder", "start", "create audio file", err)
	}
	handle := wav.NewHandle(writer)

	state := &activeSession{
		sess:      *sess,
		handle:    handle,
		startedAt: time.Now(),
		failures:  make(chan error, 1),
		finished:  make(chan struct{}),
	}

	captureCfg := capture.Config{
		Source:        capture.Source(source),
		Device:        m.cfg.Audio.Device,
		SampleRate:    m.cfg.Audio.SampleRate,
		Channels:      m.cfg.Audio.Channels,
		BitsPerSample: m.cfg.Audio.BitsPerSample,
	}
	onSamples := func(samples []float32) {
		// Runs on the capture goroutine; must never block on the manager.
		_ = handle.WriteSamples(samples)
	}
	id := sess.ID
	onError := func(streamErr error) {
		// Runs on the capture goroutine. Hand off instead of recovering
		// inline: recovery stops the capture stream, and the stream cannot
		// wait for itself.
		select {
		case state.failures <- streamErr:
		default:
		}
	}
	if err := m.recorder.Start(captureCfg, onSamples, onError); err != nil {
		_ = handle.FinalizeWithTimeout(m.cfg.FinalizeTimeout())
		m.discardSession(ctx, sess.ID)
		return nil, session.Wrap(session.ErrDeviceUnavailable, "recorder", "start", string(source), err)
	}

	m.active = state
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		select {
		case streamErr := <-state.failures:
			m.HandleMicDisconnect(id, streamErr)
		case <-state.finished:
		}
	}()
	m.logger.Info("recording started",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.String("title", sess.Title),
		logging.String(logging.FieldAudioSource, string(sess.AudioSource)),
	)
	m.bus.Publish(events.KindSessionStarted, *sess)
	m.notifyAsync(func(ctx context.Context) error {
		return m.notifier.NotifyRecordingStarted(ctx, sess.Title)
	})
	return sess, nil
}

// StopRecording ends the active recording, finalizes the audio file within
// the configured deadline, and hands the session to transcription. A finalize
// timeout is logged but never aborts the transition; the bytes already on
// disk remain playable and flow downstream.
func (m *Manager) StopRecording(ctx context.Context) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.active
	if state == nil {
		return nil, session.Wrap(session.ErrNotFound, "recorder", "stop", "no active recording", nil)
	}
	if _, ok := session.Next(state.sess.Status, session.EventStopRecording); !ok {
		return nil, session.Wrap(session.ErrNotFound, "recorder", "stop", "session is not recording", nil)
	}
	state.failureHandled.Store(true)

	if err := m.recorder.Stop(); err != nil && !errors.Is(err, capture.ErrNotRunning) {
		m.logger.Warn("capture stop reported error",
			logging.String(logging.FieldSessionID, state.sess.ID),
			logging.Error(err),
		)
	}
	state.release()
	m.finalizeHandle(state, "stop")

	duration := int64(time.Since(state.startedAt).Round(time.Second) / time.Second)
	if err := m.store.MarkProcessing(ctx, state.sess.ID, duration); err != nil {
		m.failStorage(state.sess.ID, "could not persist processing state: "+err.Error(), duration)
		m.active = nil
		return nil, session.Wrap(session.ErrStorage, "recorder", "stop", "persist processing state", err)
	}
	m.active = nil

	sess, err := m.store.GetByID(ctx, state.sess.ID)
	if err != nil || sess == nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "stop", "reload session", err)
	}

	m.logger.Info("recording stopped",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.Int64("duration_seconds", duration),
	)
	m.bus.Publish(events.KindSessionStopped, *sess)
	m.bus.Publish(events.KindSessionProcessing, *sess)
	title := sess.Title
	elapsed := time.Duration(duration) * time.Second
	m.notifyAsync(func(ctx context.Context) error {
		return m.notifier.NotifyRecordingStopped(ctx, title, elapsed)
	})

	m.startTranscription(*sess)
	return sess, nil
}

// GetCurrent returns the session occupying the recording/processing slot, or
// nil when the recorder is idle.
func (m *Manager) GetCurrent(ctx context.Context) (*session.Session, error) {
	sess, err := m.store.FindActive(ctx)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "current", "query active session", err)
	}
	return sess, nil
}

// Get loads a session by id.
func (m *Manager) Get(ctx context.Context, id string) (*session.Session, error) {
	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "get", id, err)
	}
	if sess == nil {
		return nil, session.Wrap(session.ErrNotFound, "recorder", "get", id, nil)
	}
	return sess, nil
}

// List returns sessions filtered by the given statuses, newest first.
func (m *Manager) List(ctx context.Context, statuses ...session.Status) ([]*session.Session, error) {
	sessions, err := m.store.List(ctx, statuses...)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "list", "query sessions", err)
	}
	return sessions, nil
}

// UpdateTitle renames a session in any state.
func (m *Manager) UpdateTitle(ctx context.Context, id, title string) (*session.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, session.Wrap(session.ErrStorage, "recorder", "title", "title must not be empty", nil)
	}
	if err := m.store.UpdateTitle(ctx, id, title); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
		return nil, session.Wrap(session.ErrStorage, "recorder", "title", "persist title", err)
	}
	m.mu.Lock()
	if m.active != nil && m.active.sess.ID == id {
		m.active.sess.Title = title
	}
	m.mu.Unlock()
	return m.store.GetByID(ctx, id)
}

// RetryTranscription resubmits the existing audio of a failed, completed, or
// interrupted session to the transcription bridge.
func (m *Manager) RetryTranscription(ctx context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "retry", "load session", err)
	}
	if sess == nil {
		return nil, session.Wrap(session.ErrNotFound, "recorder", "retry", id, nil)
	}
	if !sess.IsRetryable() {
		return nil, session.Wrap(session.ErrTranscriptionFailed, "recorder", "retry",
			"session is not retryable from status "+string(sess.Status), nil)
	}
	// A retry occupies the processing slot, so the single-active-session
	// rule applies the same way it does on start.
	if m.active != nil {
		return nil, session.Wrap(session.ErrAlreadyActive, "recorder", "retry", string(m.active.sess.Status), nil)
	}
	occupied, err := m.store.FindActive(ctx)
	if err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "retry", "check active session", err)
	}
	if occupied != nil {
		return nil, session.Wrap(session.ErrAlreadyActive, "recorder", "retry", string(occupied.Status), nil)
	}
	if err := m.store.MarkRetrying(ctx, id); err != nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "retry", "persist processing state", err)
	}

	sess, err = m.store.GetByID(ctx, id)
	if err != nil || sess == nil {
		return nil, session.Wrap(session.ErrStorage, "recorder", "retry", "reload session", err)
	}
	m.logger.Info("retrying transcription",
		logging.String(logging.FieldSessionID, sess.ID),
	)
	m.bus.Publish(events.KindSessionProcessing, *sess)
	m.startTranscription(*sess)
	return sess, nil
}

// Delete removes a session record and its on-disk directory. The active
// session cannot be deleted; stop it first.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	if m.active != nil && m.active.sess.ID == id {
		m.mu.Unlock()
		return session.Wrap(session.ErrAlreadyActive, "recorder", "delete", "session is recording", nil)
	}
	m.mu.Unlock()

	removed, err := m.store.Delete(ctx, id)
	if err != nil {
		return session.Wrap(session.ErrStorage, "recorder", "delete", id, err)
	}
	if !removed {
		return session.Wrap(session.ErrNotFound, "recorder", "delete", id, nil)
	}
	return nil
}

// Close waits for in-flight transcriptions and shuts the event bus down. It
// does not stop an active recording; call HandleShutdown first.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	if m.active != nil {
		m.active.release()
	}
	m.mu.Unlock()
	m.wg.Wait()
	m.bus.Close()
}

func (m *Manager) wavFormat() wav.Format {
	format := wav.DefaultFormat()
	if m.cfg.Audio.SampleRate > 0 {
		format.SampleRate = m.cfg.Audio.SampleRate
	}
	if m.cfg.Audio.Channels > 0 {
		format.Channels = m.cfg.Audio.Channels
	}
	if m.cfg.Audio.BitsPerSample > 0 {
		format.BitsPerSample = m.cfg.Audio.BitsPerSample
	}
	return format
}

// finalizeHandle closes the WAV handle under the configured deadline. Timeout
// is the only tolerated failure; anything else is surfaced in the log too.
func (m *Manager) finalizeHandle(state *activeSession, op string) {
	err := state.handle.FinalizeWithTimeout(m.cfg.FinalizeTimeout())
	if err == nil {
		return
	}
	if errors.Is(err, wav.ErrFinalizeTimeout) {
		logging.WarnWithContext(m.logger, "audio finalize timed out", "finalize_timeout",
			logging.String(logging.FieldSessionID, state.sess.ID),
			logging.String("operation", op),
			logging.Error(session.Wrap(session.ErrFinalizeTimeout, "recorder", op, "finalize deadline elapsed", err)),
			logging.String(logging.FieldErrorHint, "file remains playable up to the last completed write"),
			logging.String(logging.FieldImpact, "trailing samples may be missing from the recording"),
		)
		return
	}
	logging.ErrorWithContext(m.logger, "audio finalize failed", "finalize_error",
		logging.String(logging.FieldSessionID, state.sess.ID),
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldImpact, "recording may be truncated"),
	)
}

// failStorage moves a session to failed after a mid-lifecycle storage error,
// on its own deadline so a cancelled caller context cannot leave the row
// stuck in recording. When even this write fails the startup sweep remains
// the backstop.
func (m *Manager) failStorage(id, message string, duration int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.store.MarkFailed(ctx, id, message, &duration); err != nil {
		logging.ErrorWithContext(m.logger, "failed to persist storage failure", "storage_error",
			logging.String(logging.FieldSessionID, id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session row is stale; startup recovery will mark it interrupted"),
		)
	}
}

// discardSession undoes a Create when startup of the capture stream fails, so
// a start that never produced audio leaves no trace.
func (m *Manager) discardSession(ctx context.Context, id string) {
	if _, err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("failed to discard unstarted session",
			logging.String(logging.FieldSessionID, id),
			logging.Error(err),
		)
	}
}

func (m *Manager) notifyAsync(send func(context.Context) error) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			m.logger.Warn("notification failed", logging.Error(err))
		}
	}()
}
