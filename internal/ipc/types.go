package ipc

import "minute/internal/api"

// Session mirrors the API DTO for IPC callers.
type Session = api.Session

// StartRequest begins a new recording session.
type StartRequest struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// StartResponse carries the created session.
type StartResponse struct {
	Session Session `json:"session"`
}

// StopRequest ends the active recording.
type StopRequest struct{}

// StopResponse carries the session after it entered processing.
type StopResponse struct {
	Session Session `json:"session"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and session information.
type StatusResponse struct {
	Status api.DaemonStatus `json:"status"`
}

// CurrentRequest fetches the session occupying the recording slot.
type CurrentRequest struct{}

// CurrentResponse carries the active session, if any.
type CurrentResponse struct {
	Session *Session `json:"session,omitempty"`
}

// ListRequest filters session listing by status.
type ListRequest struct {
	Statuses []string `json:"statuses"`
}

// ListResponse contains session entries, newest first.
type ListResponse struct {
	Sessions []Session `json:"sessions"`
}

// DescribeRequest fetches a single session by id.
type DescribeRequest struct {
	ID string `json:"id"`
}

// DescribeResponse contains a single session.
type DescribeResponse struct {
	Session Session `json:"session"`
}

// RetryRequest resubmits a session's audio for transcription.
type RetryRequest struct {
	ID string `json:"id"`
}

// RetryResponse carries the session after it re-entered processing.
type RetryResponse struct {
	Session Session `json:"session"`
}

// SetTitleRequest renames a session.
type SetTitleRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// SetTitleResponse carries the renamed session.
type SetTitleResponse struct {
	Session Session `json:"session"`
}

// DeleteRequest removes a session and its files.
type DeleteRequest struct {
	ID string `json:"id"`
}

// DeleteResponse reports deletion.
type DeleteResponse struct {
	Removed bool `json:"removed"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
