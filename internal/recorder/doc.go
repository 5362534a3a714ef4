// Package recorder orchestrates the recording session lifecycle. The Manager
// serializes start/stop/retry/disconnect/shutdown commands behind a single
// mutex, owns the WAV handle for the active session, and hands finished audio
// to the transcription bridge asynchronously. Audio sample delivery bypasses
// the mutex entirely and is made safe by the handle's atomic close flag.
package recorder
