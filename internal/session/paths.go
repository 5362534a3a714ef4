package session

import "path/filepath"

const (
	meetingsDirName    = "meetings"
	audioFileName      = "audio.wav"
	transcriptFileName = "transcript.txt"
	summaryFileName    = "summary.md"
)

// RelativeAudioPath returns the audio artifact path for a session relative to
// the data root. Stored in the database so the layout can move with the root.
func RelativeAudioPath(id string) string {
	return filepath.Join(meetingsDirName, id, audioFileName)
}

// RelativeTranscriptPath returns the transcript artifact path for a session
// relative to the data root.
func RelativeTranscriptPath(id string) string {
	return filepath.Join(meetingsDirName, id, transcriptFileName)
}

// RelativeSummaryPath returns the summary artifact path for a session relative
// to the data root.
func RelativeSummaryPath(id string) string {
	return filepath.Join(meetingsDirName, id, summaryFileName)
}

// SessionDir returns the absolute directory holding a session's artifacts.
func (s *Store) SessionDir(id string) string {
	return filepath.Join(s.dataRoot, meetingsDirName, id)
}

// AbsolutePath resolves a database-relative artifact path against the data root.
func (s *Store) AbsolutePath(relative string) string {
	if relative == "" {
		return ""
	}
	if filepath.IsAbs(relative) {
		return relative
	}
	return filepath.Join(s.dataRoot, relative)
}
