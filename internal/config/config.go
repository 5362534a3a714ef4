package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Audio contains the capture format and source selection defaults.
type Audio struct {
	// Source selects what is captured when the caller does not specify one:
	// "microphone_only", "system_only", or "mixed".
	Source string `toml:"source"`
	// Device is the capture device identifier; empty selects the default input.
	Device        string `toml:"device"`
	SampleRate    int    `toml:"sample_rate"`
	Channels      int    `toml:"channels"`
	BitsPerSample int    `toml:"bits_per_sample"`
}

// Recording contains session lifecycle timing.
type Recording struct {
	// FinalizeTimeout bounds how long a WAV finalize may wait for the audio
	// callback to release the encoder, in seconds.
	FinalizeTimeout int `toml:"finalize_timeout"`
	// ShutdownTimeout bounds the finalize performed on process shutdown, in
	// seconds. It must stay below a typical supervisor kill window.
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// Transcriber contains the speech-to-text service connection settings.
type Transcriber struct {
	Endpoint       string `toml:"endpoint"`
	Model          string `toml:"model"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Recording      bool   `toml:"recording"`
	Transcripts    bool   `toml:"transcripts"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for minute.
//
// Configuration sections by subsystem:
//   - Paths: data root (sessions + database) and log directory
//   - Audio: capture format and default source
//   - Recording: finalize/shutdown deadlines
//   - Transcriber: speech-to-text service connection
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Audio         Audio         `toml:"audio"`
	Recording     Recording     `toml:"recording"`
	Transcriber   Transcriber   `toml:"transcriber"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/minute/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("minute.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for recording sessions.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.MeetingsDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MeetingsDir returns the directory holding per-session folders.
func (c *Config) MeetingsDir() string {
	return filepath.Join(c.Paths.DataDir, "meetings")
}

// DatabasePath returns the path to the session database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "meetings.db")
}

// FinalizeTimeout returns the bounded deadline for WAV finalization.
func (c *Config) FinalizeTimeout() time.Duration {
	return time.Duration(c.Recording.FinalizeTimeout) * time.Second
}

// ShutdownTimeout returns the finalize deadline used on process shutdown.
// It is clamped to never exceed the regular finalize timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	timeout := time.Duration(c.Recording.ShutdownTimeout) * time.Second
	if finalize := c.FinalizeTimeout(); timeout > finalize {
		return finalize
	}
	return timeout
}

// TranscriberTimeout returns the request deadline for the transcription service.
func (c *Config) TranscriberTimeout() time.Duration {
	return time.Duration(c.Transcriber.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
