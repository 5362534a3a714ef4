package wav

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrFinalizeTimeout means finalize could not acquire the encoder lock before
// its deadline. Bytes already on disk remain valid; the file stays playable up
// to the last completed write.
var ErrFinalizeTimeout = errors.New("wav finalize timed out")

// lockRetryInterval is how often finalize re-attempts the encoder lock.
const lockRetryInterval = 10 * time.Millisecond

// Handle shares a Writer between the audio callback and the orchestration
// context. The audio side calls WriteSamples; the orchestration side calls
// FinalizeWithTimeout exactly when the session leaves the recording state.
type Handle struct {
	mu        sync.Mutex
	closed    atomic.Bool
	writer    *Writer
	finalized bool
}

// NewHandle wraps a Writer for concurrent use.
func NewHandle(writer *Writer) *Handle {
	return &Handle{writer: writer}
}

// WriteSamples appends a block of samples. Once the close flag is set this is
// a silent no-op, and a block arriving while finalize holds the encoder lock
// is dropped rather than waited on. The audio callback never blocks here.
func (h *Handle) WriteSamples(samples []float32) error {
	if h.closed.Load() {
		return nil
	}
	if !h.mu.TryLock() {
		// Contention means finalize is running; the close flag is already
		// set, so the block would be discarded anyway.
		return nil
	}
	defer h.mu.Unlock()
	// Re-check under the lock: finalize may have won the race.
	if h.closed.Load() {
		return nil
	}
	return h.writer.WriteSamples(samples)
}

// Closed reports whether the close flag has been set.
func (h *Handle) Closed() bool {
	return h.closed.Load()
}

// Duration reports the audio length written so far.
func (h *Handle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.writer.Duration()
}

// FinalizeWithTimeout sets the close flag, then repeatedly attempts a
// non-blocking acquisition of the encoder lock until it succeeds or the
// deadline elapses. On success the header is patched and the file closed.
// Finalizing an already-finalized handle is a no-op success.
func (h *Handle) FinalizeWithTimeout(timeout time.Duration) error {
	h.closed.Store(true)

	deadline := time.Now().Add(timeout)
	for {
		if h.mu.TryLock() {
			if h.finalized {
				h.mu.Unlock()
				return nil
			}
			err := h.writer.Finalize()
			if err == nil {
				h.finalized = true
			}
			h.mu.Unlock()
			return err
		}
		if time.Now().After(deadline) {
			return ErrFinalizeTimeout
		}
		time.Sleep(lockRetryInterval)
	}
}
