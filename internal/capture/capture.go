package capture

import "errors"

// Source selects which streams a capture session records.
type Source string

const (
	SourceMicrophoneOnly Source = "microphone_only"
	SourceSystemOnly     Source = "system_only"
	SourceMixed          Source = "mixed"
)

// Config describes a capture stream.
type Config struct {
	Source Source
	// Device is the capture device identifier; empty selects the default input.
	Device        string
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// SampleFunc receives a block of samples in [-1, 1] on the capture goroutine.
// It must never block.
type SampleFunc func(samples []float32)

// ErrorFunc receives asynchronous stream errors, at most one per stream.
type ErrorFunc func(err error)

// ErrNotRunning is returned by Stop when no stream is active.
var ErrNotRunning = errors.New("capture not running")

// Recorder is the audio input boundary. Start opens the stream and returns
// once samples are flowing; Stop tears it down without invoking ErrorFunc.
type Recorder interface {
	Start(cfg Config, onSamples SampleFunc, onError ErrorFunc) error
	Stop() error
}
