package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

const defaultBinary = "arecord"

// blockDuration is the cadence at which sample blocks are delivered.
const blockDuration = 100 * time.Millisecond

// ALSARecorder captures PCM audio by running arecord and streaming its raw
// output. A stream that dies while recording (device unplugged, daemon
// restart) is reported through the error callback exactly once.
type ALSARecorder struct {
	binary string

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stopping atomic.Bool
	errOnce  *sync.Once
	done     chan struct{}
}

// NewALSARecorder builds a recorder shelling out to arecord. An empty binary
// uses the default lookup on PATH.
func NewALSARecorder(binary string) *ALSARecorder {
	if binary == "" {
		binary = defaultBinary
	}
	return &ALSARecorder{binary: binary}
}

// Start launches arecord and begins delivering sample blocks.
func (r *ALSARecorder) Start(cfg Config, onSamples SampleFunc, onError ErrorFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("capture already running")
	}
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return fmt.Errorf("invalid capture format: rate=%d channels=%d", cfg.SampleRate, cfg.Channels)
	}
	if cfg.BitsPerSample != 16 {
		return fmt.Errorf("unsupported bit depth: %d", cfg.BitsPerSample)
	}

	args := []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(cfg.SampleRate),
		"-c", strconv.Itoa(cfg.Channels),
	}
	if cfg.Device != "" {
		args = append(args, "-D", cfg.Device)
	}

	cmd := exec.Command(r.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.binary, err)
	}

	r.cmd = cmd
	r.stdout = stdout
	r.stopping.Store(false)
	r.errOnce = &sync.Once{}
	r.done = make(chan struct{})

	blockFrames := cfg.SampleRate * int(blockDuration) / int(time.Second)
	if blockFrames <= 0 {
		blockFrames = cfg.SampleRate / 10
	}
	go r.readLoop(stdout, blockFrames*cfg.Channels, onSamples, onError, r.errOnce, r.done)

	return nil
}

// Stop terminates the capture process. Errors from the teardown race are
// suppressed; the stream is gone either way.
func (r *ALSARecorder) Stop() error {
	r.mu.Lock()
	cmd := r.cmd
	done := r.done
	r.cmd = nil
	r.stdout = nil
	r.mu.Unlock()

	if cmd == nil {
		return ErrNotRunning
	}
	r.stopping.Store(true)

	if cmd.Process != nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()
	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-waitDone
	}

	if done != nil {
		<-done
	}
	return nil
}

func (r *ALSARecorder) readLoop(stdout io.Reader, blockSamples int, onSamples SampleFunc, onError ErrorFunc, errOnce *sync.Once, done chan struct{}) {
	defer close(done)

	raw := make([]byte, blockSamples*2)
	block := make([]float32, blockSamples)
	for {
		if _, err := io.ReadFull(stdout, raw); err != nil {
			if r.stopping.Load() {
				return
			}
			if onError != nil {
				errOnce.Do(func() {
					onError(fmt.Errorf("capture stream ended: %w", err))
				})
			}
			return
		}
		for i := range block {
			block[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32767.0
		}
		if onSamples != nil {
			onSamples(block)
		}
	}
}
