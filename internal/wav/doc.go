// Package wav writes 16-bit PCM WAV files from streamed floating-point sample
// blocks and makes concurrent finalization safe.
//
// Writer owns the file and the RIFF header bookkeeping. Handle wraps a Writer
// for the two-context recording model: an audio callback appends blocks while
// an orchestration context may request a bounded, idempotent finalize at any
// moment. The close flag plus non-blocking lock acquisition means the audio
// side never waits on a finalize in progress.
package wav
