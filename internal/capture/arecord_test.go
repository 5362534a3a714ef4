package capture

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pilebones/go-udev/netlink"
)

func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arecord")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func testConfig() Config {
	return Config{
		Source:        SourceMicrophoneOnly,
		SampleRate:    16000,
		Channels:      1,
		BitsPerSample: 16,
	}
}

func TestALSARecorderDeliversSampleBlocks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a shell")
	}
	recorder := NewALSARecorder(writeStub(t, "#!/bin/sh\nexec cat /dev/zero\n"))

	blocks := make(chan int, 16)
	err := recorder.Start(testConfig(), func(samples []float32) {
		select {
		case blocks <- len(samples):
		default:
		}
	}, func(err error) {
		t.Errorf("unexpected capture error: %v", err)
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case n := <-blocks:
		if n != 1600 {
			t.Fatalf("block size = %d, want 1600", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for sample block")
	}

	if err := recorder.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestALSARecorderReportsStreamDeath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a shell")
	}
	recorder := NewALSARecorder(writeStub(t, "#!/bin/sh\nexit 0\n"))

	errs := make(chan error, 1)
	err := recorder.Start(testConfig(), nil, func(err error) {
		errs <- err
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case streamErr := <-errs:
		if streamErr == nil {
			t.Fatal("expected non-nil stream error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream error")
	}
}

func TestALSARecorderStopWithoutStart(t *testing.T) {
	recorder := NewALSARecorder("")
	if err := recorder.Stop(); err != ErrNotRunning {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestStartRejectsUnsupportedFormat(t *testing.T) {
	recorder := NewALSARecorder("")
	cfg := testConfig()
	cfg.BitsPerSample = 24
	if err := recorder.Start(cfg, nil, nil); err == nil {
		t.Fatal("expected error for unsupported bit depth")
	}
}

func TestExtractDeviceName(t *testing.T) {
	uevent := netlink.UEvent{Env: map[string]string{"DEVNAME": "controlC1"}}
	if got := extractDeviceName(uevent); got != "controlC1" {
		t.Fatalf("unexpected device: %q", got)
	}
	uevent = netlink.UEvent{Env: map[string]string{"DEVPATH": "/devices/pci0000/usb1/sound/card1"}}
	if got := extractDeviceName(uevent); got != "card1" {
		t.Fatalf("unexpected device from devpath: %q", got)
	}
	if got := extractDeviceName(netlink.UEvent{Env: map[string]string{}}); got != "" {
		t.Fatalf("expected empty device, got %q", got)
	}
}

func TestDeviceMonitorNilSafety(t *testing.T) {
	var monitor *DeviceMonitor
	if monitor.Running() {
		t.Fatal("nil monitor must not report running")
	}
	monitor.Stop()
}
