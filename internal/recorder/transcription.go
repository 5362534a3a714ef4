package recorder

import (
	"context"
	"os"

	"minute/internal/events"
	"minute/internal/logging"
	"minute/internal/session"
)

// startTranscription submits the session's audio to the bridge on a tracked
// goroutine. The caller has already persisted status=processing.
func (m *Manager) startTranscription(sess session.Session) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.TranscriberTimeout())
		defer cancel()
		m.runTranscription(ctx, sess)
	}()
}

func (m *Manager) runTranscription(ctx context.Context, sess session.Session) {
	if m.bridge == nil {
		m.failTranscription(ctx, sess, session.Wrap(session.ErrTranscriptionFailed, "transcriber", "submit",
			"no transcriber endpoint configured", nil))
		return
	}

	audioPath := m.store.AbsolutePath(sess.AudioPath)
	result, err := m.bridge.Transcribe(ctx, audioPath)
	if err != nil {
		m.failTranscription(ctx, sess, session.Wrap(session.ErrTranscriptionFailed, "transcriber", "submit", "", err))
		return
	}

	transcriptRel := session.RelativeTranscriptPath(sess.ID)
	if err := os.WriteFile(m.store.AbsolutePath(transcriptRel), []byte(result.Text), 0o644); err != nil {
		m.failTranscription(ctx, sess, session.Wrap(session.ErrStorage, "transcriber", "write transcript", "", err))
		return
	}
	if err := m.store.MarkCompleted(ctx, sess.ID, transcriptRel); err != nil {
		m.failTranscription(ctx, sess, session.Wrap(session.ErrStorage, "transcriber", "persist completion", "", err))
		return
	}

	updated, err := m.store.GetByID(ctx, sess.ID)
	if err != nil || updated == nil {
		updated = &sess
		updated.Status = session.StatusCompleted
		updated.TranscriptPath = transcriptRel
	}
	m.logger.Info("transcription completed",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.String("transcript_path", transcriptRel),
	)
	m.bus.Publish(events.KindSessionCompleted, *updated)
	title := updated.Title
	m.notifyAsync(func(ctx context.Context) error {
		return m.notifier.NotifyTranscriptReady(ctx, title)
	})
}

// failTranscription moves a processing session to failed. The measured
// recording duration is kept so a later retry does not lose it.
func (m *Manager) failTranscription(ctx context.Context, sess session.Session, cause error) {
	message := cause.Error()
	if err := m.store.MarkFailed(ctx, sess.ID, message, nil); err != nil {
		logging.ErrorWithContext(m.logger, "failed to persist transcription failure", "transcription_failed",
			logging.String(logging.FieldSessionID, sess.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session stuck in processing until startup recovery"),
		)
	}

	logging.WarnWithContext(m.logger, "transcription failed", "transcription_failed",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "audio is preserved; run retry once the transcriber is reachable"),
		logging.String(logging.FieldImpact, "no transcript produced"),
	)

	updated, err := m.store.GetByID(ctx, sess.ID)
	if err != nil || updated == nil {
		updated = &sess
		updated.Status = session.StatusFailed
		updated.ErrorMessage = message
	}
	m.bus.Publish(events.KindSessionFailed, *updated)
	title := updated.Title
	m.notifyAsync(func(ctx context.Context) error {
		return m.notifier.NotifySessionFailed(ctx, title, message)
	})
}
