package api

// Session is the wire representation of a recording session.
type Session struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	AudioSource    string `json:"audio_source"`
	AudioPath      string `json:"audio_path,omitempty"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	SummaryPath    string `json:"summary_path,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	// DurationSeconds is negative until recording stops or is interrupted.
	DurationSeconds int64  `json:"duration_seconds"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// HasDuration reports whether a recording length was measured.
func (s Session) HasDuration() bool {
	return s.DurationSeconds >= 0
}

// DaemonStatus summarizes the running daemon for status commands.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Current      *Session       `json:"current,omitempty"`
	SessionStats map[string]int `json:"session_stats"`
	LockPath     string         `json:"lock_path"`
	DatabasePath string         `json:"database_path"`
}
