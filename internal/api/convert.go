package api

import (
	"time"

	"minute/internal/session"
)

// FromSession converts the internal model into its wire shape.
func FromSession(sess *session.Session) Session {
	if sess == nil {
		return Session{DurationSeconds: -1}
	}
	duration := int64(-1)
	if sess.Duration != nil {
		duration = *sess.Duration
	}
	return Session{
		ID:              sess.ID,
		Title:           sess.Title,
		Status:          string(sess.Status),
		AudioSource:     string(sess.AudioSource),
		AudioPath:       sess.AudioPath,
		TranscriptPath:  sess.TranscriptPath,
		SummaryPath:     sess.SummaryPath,
		ErrorMessage:    sess.ErrorMessage,
		DurationSeconds: duration,
		CreatedAt:       FormatTime(sess.CreatedAt),
		UpdatedAt:       FormatTime(sess.UpdatedAt),
	}
}

// FromSessions converts a slice of sessions, skipping nil entries.
func FromSessions(sessions []*session.Session) []Session {
	out := make([]Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess == nil {
			continue
		}
		out = append(out, FromSession(sess))
	}
	return out
}

// MergeStats flattens per-status counts into string keys, including zeroes
// for every known status so renderers show a stable set of rows.
func MergeStats(stats map[session.Status]int) map[string]int {
	merged := make(map[string]int, len(session.AllStatuses()))
	for _, status := range session.AllStatuses() {
		merged[string(status)] = stats[status]
	}
	return merged
}

// FormatTime renders timestamps in RFC 3339 with second precision. Zero
// times become empty strings.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
