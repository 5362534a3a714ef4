package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAudio()
	c.normalizeRecording()
	c.normalizeTranscriber()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAudio() {
	c.Audio.Source = strings.ToLower(strings.TrimSpace(c.Audio.Source))
	if c.Audio.Source == "" {
		c.Audio.Source = defaultAudioSource
	}
	c.Audio.Device = strings.TrimSpace(c.Audio.Device)
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaultSampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaultChannels
	}
	if c.Audio.BitsPerSample <= 0 {
		c.Audio.BitsPerSample = defaultBitsPerSample
	}
}

func (c *Config) normalizeRecording() {
	if c.Recording.FinalizeTimeout <= 0 {
		c.Recording.FinalizeTimeout = defaultFinalizeTimeout
	}
	if c.Recording.ShutdownTimeout <= 0 {
		c.Recording.ShutdownTimeout = defaultShutdownTimeout
	}
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.Endpoint = strings.TrimSpace(c.Transcriber.Endpoint)
	if c.Transcriber.Endpoint == "" {
		if value, ok := os.LookupEnv("MINUTE_TRANSCRIBER_ENDPOINT"); ok {
			c.Transcriber.Endpoint = strings.TrimSpace(value)
		}
	}
	c.Transcriber.Model = strings.TrimSpace(c.Transcriber.Model)
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = defaultTranscriberModel
	}
	c.Transcriber.Language = strings.ToLower(strings.TrimSpace(c.Transcriber.Language))
	if c.Transcriber.Language == "" {
		c.Transcriber.Language = "en"
	}
	if c.Transcriber.TimeoutSeconds <= 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
