package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minute/internal/config"
)

const defaultHTTPTimeout = 5 * time.Minute

// Result carries the transcript produced for one audio file.
type Result struct {
	Text string
}

// Bridge is the transcription boundary, invoked once per stop or retry.
type Bridge interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// Client posts audio to a whisper-compatible HTTP transcription endpoint.
type Client struct {
	endpoint   string
	model      string
	language   string
	httpClient *http.Client
}

// Option customizes the transcription client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New constructs a transcription client for the given endpoint.
func New(endpoint, model, language string, timeout time.Duration, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("transcriber endpoint required")
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		endpoint:   endpoint,
		model:      strings.TrimSpace(model),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig constructs a transcription client from application config.
// Returns nil without error when no endpoint is configured; callers treat a
// nil bridge as "transcription unavailable".
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.Transcriber.Endpoint) == "" {
		return nil, nil
	}
	return New(
		cfg.Transcriber.Endpoint,
		cfg.Transcriber.Model,
		cfg.Transcriber.Language,
		cfg.TranscriberTimeout(),
	)
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file and returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	var empty Result

	file, err := os.Open(audioPath)
	if err != nil {
		return empty, fmt.Errorf("transcribe: open audio: %w", err)
	}
	defer file.Close()

	reader, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(audioPath))
		if err != nil {
			_ = writer.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = writer.CloseWithError(err)
			return
		}
		if c.model != "" {
			if err := form.WriteField("model", c.model); err != nil {
				_ = writer.CloseWithError(err)
				return
			}
		}
		if c.language != "" {
			if err := form.WriteField("language", c.language); err != nil {
				_ = writer.CloseWithError(err)
				return
			}
		}
		_ = writer.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, reader)
	if err != nil {
		return empty, fmt.Errorf("transcribe: request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, fmt.Errorf("transcribe: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, fmt.Errorf("transcribe: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return empty, fmt.Errorf("transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Some endpoints return plain text.
		text := strings.TrimSpace(string(body))
		if text == "" {
			return empty, fmt.Errorf("transcribe: decode response: %w", err)
		}
		return Result{Text: text}, nil
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return empty, errors.New("transcribe: empty transcript returned")
	}
	return Result{Text: parsed.Text}, nil
}
