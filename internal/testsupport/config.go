package testsupport

import (
	"path/filepath"
	"testing"

	"minute/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFinalizeTimeout overrides the WAV finalize deadline in seconds.
func WithFinalizeTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recording.FinalizeTimeout = seconds
	}
}

// WithTranscriberEndpoint points the transcriber at a test server.
func WithTranscriberEndpoint(endpoint string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcriber.Endpoint = endpoint
	}
}

// WithAudioSource overrides the default capture source.
func WithAudioSource(source string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.Source = source
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
