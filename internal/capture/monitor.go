package capture

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"minute/internal/logging"
)

// DeviceMonitor listens for udev netlink events and reports sound device
// removal. It feeds the same error path as a dying capture stream so a yanked
// USB microphone is recovered before arecord notices the pipe closing.
type DeviceMonitor struct {
	logger  *slog.Logger
	handler func(device string)

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// NewDeviceMonitor creates a monitor that invokes handler with the removed
// device name.
func NewDeviceMonitor(logger *slog.Logger, handler func(device string)) *DeviceMonitor {
	return &DeviceMonitor{
		logger:  logging.NewComponentLogger(logger, "device-monitor"),
		handler: handler,
	}
}

// Start begins listening for udev netlink events. A connection failure is
// non-fatal: disconnect detection then relies on the capture stream erroring.
func (m *DeviceMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		logging.WarnWithContext(m.logger, "failed to connect to netlink socket", "netlink_connect_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ensure the process has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "disconnect detection falls back to stream errors"),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("device monitor started",
		logging.String(logging.FieldEventType, "device_monitor_started"),
	)
	return nil
}

// Stop shuts down the monitor.
func (m *DeviceMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("device monitor stopped",
		logging.String(logging.FieldEventType, "device_monitor_stopped"),
	)
}

// Running reports whether the monitor is active.
func (m *DeviceMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *DeviceMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(uevent)
		case err := <-errs:
			logging.WarnWithContext(m.logger, "device monitor error", "device_monitor_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check kernel netlink subsystem"),
				logging.String(logging.FieldImpact, "disconnect detection may be delayed"),
			)
		}
	}
}

// buildMatcher matches removal of sound subsystem devices.
func (m *DeviceMonitor) buildMatcher() netlink.Matcher {
	action := "remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "sound",
		},
	})
	return rules
}

func (m *DeviceMonitor) handleEvent(uevent netlink.UEvent) {
	device := extractDeviceName(uevent)
	if device == "" {
		return
	}

	m.logger.Info("sound device removed",
		logging.String(logging.FieldEventType, "sound_device_removed"),
		logging.String(logging.FieldDevice, device),
	)

	if m.handler != nil {
		m.handler(device)
	}
}

func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
