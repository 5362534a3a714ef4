package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"minute/internal/config"
)

const userAgent = "Minute/0.1.0"

// Service defines the notification surface exposed to the recorder.
type Service interface {
	NotifyRecordingStarted(ctx context.Context, title string) error
	NotifyRecordingStopped(ctx context.Context, title string, duration time.Duration) error
	NotifyTranscriptReady(ctx context.Context, title string) error
	NotifySessionFailed(ctx context.Context, title, reason string) error
	NotifySessionInterrupted(ctx context.Context, title string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		recording:   cfg.Notifications.Recording,
		transcripts: cfg.Notifications.Transcripts,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	recording   bool
	transcripts bool
	errors      bool
}

func (n *ntfyService) NotifyRecordingStarted(ctx context.Context, title string) error {
	if !n.recording {
		return nil
	}
	data := payload{
		title:   "Minute - Recording Started",
		message: fmt.Sprintf("Recording: %s", strings.TrimSpace(title)),
		tags:    []string{"minute", "recording", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRecordingStopped(ctx context.Context, title string, duration time.Duration) error {
	if !n.recording {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	data := payload{
		title:   "Minute - Recording Stopped",
		message: fmt.Sprintf("Stopped after %s: %s", duration, strings.TrimSpace(title)),
		tags:    []string{"minute", "recording", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranscriptReady(ctx context.Context, title string) error {
	if !n.transcripts {
		return nil
	}
	data := payload{
		title:    "Minute - Transcript Ready",
		message:  fmt.Sprintf("Transcript ready: %s", strings.TrimSpace(title)),
		tags:     []string{"minute", "transcript", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionFailed(ctx context.Context, title, reason string) error {
	if !n.errors {
		return nil
	}
	message := fmt.Sprintf("Session failed: %s", strings.TrimSpace(title))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\n%s", message, reason)
	}
	data := payload{
		title:    "Minute - Session Failed",
		message:  message,
		tags:     []string{"minute", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionInterrupted(ctx context.Context, title string) error {
	if !n.errors {
		return nil
	}
	data := payload{
		title:   "Minute - Session Interrupted",
		message: fmt.Sprintf("Recording interrupted by shutdown: %s\nPartial audio was preserved", strings.TrimSpace(title)),
		tags:    []string{"minute", "interrupted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Minute - Test",
		message:  "Notification system test",
		tags:     []string{"minute", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRecordingStarted(context.Context, string) error                 { return nil }
func (noopService) NotifyRecordingStopped(context.Context, string, time.Duration) error  { return nil }
func (noopService) NotifyTranscriptReady(context.Context, string) error                  { return nil }
func (noopService) NotifySessionFailed(context.Context, string, string) error            { return nil }
func (noopService) NotifySessionInterrupted(context.Context, string) error               { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
