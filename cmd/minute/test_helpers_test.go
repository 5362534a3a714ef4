package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"minute/internal/capture"
	"minute/internal/config"
	"minute/internal/daemon"
	"minute/internal/ipc"
	"minute/internal/logging"
	"minute/internal/recorder"
	"minute/internal/session"
	"minute/internal/testsupport"
	"minute/internal/transcribe"
)

type fakeRecorder struct {
	mu        sync.Mutex
	running   bool
	onSamples capture.SampleFunc
}

func (f *fakeRecorder) Start(cfg capture.Config, onSamples capture.SampleFunc, onError capture.ErrorFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.onSamples = onSamples
	return nil
}

func (f *fakeRecorder) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return capture.ErrNotRunning
	}
	f.running = false
	return nil
}

func (f *fakeRecorder) emit(samples []float32) {
	f.mu.Lock()
	deliver := f.onSamples
	f.mu.Unlock()
	if deliver != nil {
		deliver(samples)
	}
}

type fakeBridge struct{}

func (fakeBridge) Transcribe(ctx context.Context, audioPath string) (transcribe.Result, error) {
	return transcribe.Result{Text: "cli transcript"}, nil
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *session.Store
	daemon     *daemon.Daemon
	recorder   *fakeRecorder
	server     *ipc.Server
	socketPath string
	configPath string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(homeDir, ".config", "minute", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)

	rec := &fakeRecorder{}
	mgr, err := recorder.NewManager(cfg, store, logging.NewNop(),
		recorder.WithRecorder(rec),
		recorder.WithBridge(fakeBridge{}),
	)
	if err != nil {
		t.Fatalf("recorder.NewManager: %v", err)
	}
	d, err := daemon.New(cfg, store, mgr, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logging.NewNop())
	if err != nil {
		cancel()
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		recorder:   rec,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
