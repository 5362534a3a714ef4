// Package transcribe invokes the external speech-to-text service.
//
// The Bridge interface is the transcription boundary: given an audio file it
// asynchronously produces transcript text or fails. The HTTP client posts the
// WAV as a multipart upload to a whisper-compatible endpoint; tests and the
// recorder substitute their own Bridge.
package transcribe
