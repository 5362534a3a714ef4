package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyActive rejects a start while another session occupies the
	// recording/processing slot. No state is mutated.
	ErrAlreadyActive = errors.New("a session is already active")
	// ErrDeviceUnavailable means the capture adapter could not open the
	// requested source; no session row is created.
	ErrDeviceUnavailable = errors.New("capture device unavailable")
	// ErrMicDisconnected marks a stream error mid-recording. The session is
	// recovered into failed with partial audio preserved.
	ErrMicDisconnected = errors.New("microphone disconnected")
	// ErrFinalizeTimeout marks an audio finalize that missed its deadline.
	// The lifecycle transition proceeds anyway; bytes already on disk stay
	// playable up to the last completed write.
	ErrFinalizeTimeout = errors.New("audio finalize timed out")
	// ErrTranscriptionFailed marks a transcription bridge failure. The session
	// becomes failed and is retryable without re-recording.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrStorage marks a filesystem or database write failure.
	ErrStorage = errors.New("storage error")
	// ErrNotFound means the requested session id does not exist.
	ErrNotFound = errors.New("session not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "session failure"
	}
	return strings.Join(parts, ": ")
}
