package wav

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestHandle(t *testing.T) (*Handle, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	writer, err := Create(path, DefaultFormat())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return NewHandle(writer), path
}

func block(n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.25
	}
	return samples
}

func TestHandleWriteThenFinalize(t *testing.T) {
	handle, path := newTestHandle(t)

	for i := 0; i < 3; i++ {
		if err := handle.WriteSamples(block(1600)); err != nil {
			t.Fatalf("WriteSamples failed: %v", err)
		}
	}

	start := time.Now()
	if err := handle.FinalizeWithTimeout(5 * time.Second); err != nil {
		t.Fatalf("FinalizeWithTimeout failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("uncontended finalize took %v", elapsed)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat wav file: %v", err)
	}
	if want := int64(HeaderSize + 2*4800); info.Size() != want {
		t.Fatalf("file size = %d, want %d", info.Size(), want)
	}
}

func TestHandleDropsWritesAfterClose(t *testing.T) {
	handle, path := newTestHandle(t)

	if err := handle.WriteSamples(block(1600)); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}
	if err := handle.FinalizeWithTimeout(time.Second); err != nil {
		t.Fatalf("FinalizeWithTimeout failed: %v", err)
	}
	if !handle.Closed() {
		t.Fatal("expected close flag set after finalize")
	}

	// Late blocks from the audio callback must be silently discarded.
	if err := handle.WriteSamples(block(1600)); err != nil {
		t.Fatalf("post-close WriteSamples must not error: %v", err)
	}

	parsed, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if parsed.DataBytes != 3200 {
		t.Fatalf("data bytes = %d, want 3200 (late write must not land)", parsed.DataBytes)
	}
}

func TestHandleFinalizeIdempotent(t *testing.T) {
	handle, _ := newTestHandle(t)

	if err := handle.WriteSamples(block(160)); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}
	if err := handle.FinalizeWithTimeout(time.Second); err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	if err := handle.FinalizeWithTimeout(time.Second); err != nil {
		t.Fatalf("second finalize should be a no-op success, got %v", err)
	}
}

func TestHandleFinalizeTimesOutWhileLockHeld(t *testing.T) {
	handle, path := newTestHandle(t)

	if err := handle.WriteSamples(block(1600)); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}

	handle.mu.Lock()
	var wg sync.WaitGroup
	wg.Add(1)
	var finalizeErr error
	go func() {
		defer wg.Done()
		finalizeErr = handle.FinalizeWithTimeout(100 * time.Millisecond)
	}()
	wg.Wait()
	if !errors.Is(finalizeErr, ErrFinalizeTimeout) {
		handle.mu.Unlock()
		t.Fatalf("expected ErrFinalizeTimeout, got %v", finalizeErr)
	}
	handle.mu.Unlock()

	// The deadline left the file un-finalized but every byte written before
	// the hold is still on disk; a later finalize completes normally.
	if err := handle.FinalizeWithTimeout(time.Second); err != nil {
		t.Fatalf("finalize after release failed: %v", err)
	}
	parsed, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if parsed.DataBytes != 3200 {
		t.Fatalf("data bytes = %d, want 3200", parsed.DataBytes)
	}
}

func TestHandleWriteDropsBlockWhileLockHeld(t *testing.T) {
	handle, path := newTestHandle(t)

	if err := handle.WriteSamples(block(1600)); err != nil {
		t.Fatalf("WriteSamples failed: %v", err)
	}

	// Hold the encoder lock the way an in-progress finalize would. The
	// write must return immediately and discard its block.
	handle.mu.Lock()
	done := make(chan error, 1)
	go func() {
		done <- handle.WriteSamples(block(1600))
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("contended write returned error: %v", err)
		}
	case <-time.After(time.Second):
		handle.mu.Unlock()
		t.Fatal("WriteSamples blocked while the encoder lock was held")
	}
	handle.mu.Unlock()

	if err := handle.FinalizeWithTimeout(time.Second); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	parsed, err := ReadInfo(path)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}
	if parsed.DataBytes != 3200 {
		t.Fatalf("data bytes = %d, want 3200 (contended block must be dropped)", parsed.DataBytes)
	}
}

func TestHandleConcurrentWritesDuringFinalize(t *testing.T) {
	handle, path := newTestHandle(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			_ = handle.WriteSamples(block(160))
		}
	}()

	time.Sleep(20 * time.Millisecond)
	if err := handle.FinalizeWithTimeout(5 * time.Second); err != nil {
		t.Fatalf("FinalizeWithTimeout failed: %v", err)
	}
	close(stop)
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read wav file: %v", err)
	}
	parsed, err := ParseInfo(data)
	if err != nil {
		t.Fatalf("ParseInfo failed: %v", err)
	}
	// The header size must account for exactly the payload on disk.
	if int(parsed.DataBytes) != len(data)-HeaderSize {
		t.Fatalf("header says %d payload bytes, file has %d", parsed.DataBytes, len(data)-HeaderSize)
	}
}
