package session

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a recording session.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusRecording   Status = "recording"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

var allStatuses = []Status{
	StatusIdle,
	StatusRecording,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusInterrupted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Event identifies a lifecycle command or signal applied to a session.
type Event string

const (
	EventStartRecording   Event = "start_recording"
	EventStopRecording    Event = "stop_recording"
	EventMicDisconnect    Event = "mic_disconnect"
	EventAppShutdown      Event = "app_shutdown"
	EventTranscriptionOK  Event = "transcription_ok"
	EventTranscriptionErr Event = "transcription_err"
	EventRetry            Event = "retry"
)

var transitions = map[Status]map[Event]Status{
	StatusIdle: {
		EventStartRecording: StatusRecording,
	},
	StatusRecording: {
		EventStopRecording: StatusProcessing,
		EventMicDisconnect: StatusFailed,
		EventAppShutdown:   StatusInterrupted,
	},
	StatusProcessing: {
		EventTranscriptionOK:  StatusCompleted,
		EventTranscriptionErr: StatusFailed,
	},
	StatusCompleted: {
		EventRetry: StatusProcessing,
	},
	StatusFailed: {
		EventRetry: StatusProcessing,
	},
	StatusInterrupted: {
		EventRetry: StatusProcessing,
	},
}

// Next returns the status reached by applying event to from. The second return
// is false when the transition is not in the lifecycle graph; callers must
// reject the event and leave persisted state untouched.
func Next(from Status, event Event) (Status, bool) {
	to, ok := transitions[from][event]
	return to, ok
}

// AudioSource selects which streams a session captures.
type AudioSource string

const (
	SourceMicrophoneOnly AudioSource = "microphone_only"
	SourceSystemOnly     AudioSource = "system_only"
	SourceMixed          AudioSource = "mixed"
)

// ParseAudioSource converts a string into a known AudioSource.
func ParseAudioSource(value string) (AudioSource, bool) {
	normalized := AudioSource(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case SourceMicrophoneOnly, SourceSystemOnly, SourceMixed:
		return normalized, true
	}
	return "", false
}

// Session represents a meeting recording persisted in SQLite.
type Session struct {
	ID             string
	Title          string
	Status         Status
	AudioSource    AudioSource
	AudioPath      string
	TranscriptPath string
	SummaryPath    string
	ErrorMessage   string
	// Duration is in whole seconds; nil until recording stops or is interrupted.
	Duration  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsActive reports whether the session occupies the exclusive recording or
// processing slot. At most one session may be active at a time.
func (s Session) IsActive() bool {
	return IsActiveStatus(s.Status)
}

// IsActiveStatus reports whether a status occupies the exclusive slot.
func IsActiveStatus(status Status) bool {
	return status == StatusRecording || status == StatusProcessing
}

// IsRetryable reports whether transcription may be resubmitted for this session.
func (s Session) IsRetryable() bool {
	_, ok := Next(s.Status, EventRetry)
	return ok && s.AudioPath != ""
}

// DefaultTitle formats the human-facing title for a session created at ts,
// for example "Meeting - January 15, 2025 3:30 PM".
func DefaultTitle(ts time.Time) string {
	return "Meeting - " + ts.Format("January 2, 2006 3:04 PM")
}
