package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validSources = map[string]struct{}{
	"microphone_only": {},
	"system_only":     {},
	"mixed":           {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Validate checks configuration consistency after normalization.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return fmt.Errorf("paths.log_dir must not be empty")
	}

	if _, ok := validSources[c.Audio.Source]; !ok {
		return fmt.Errorf("audio.source: unsupported value %q (expected microphone_only, system_only, or mixed)", c.Audio.Source)
	}
	if c.Audio.BitsPerSample != 16 {
		return fmt.Errorf("audio.bits_per_sample: only 16-bit PCM is supported, got %d", c.Audio.BitsPerSample)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels: expected 1 or 2, got %d", c.Audio.Channels)
	}

	if c.Transcriber.Endpoint != "" {
		parsed, err := url.Parse(c.Transcriber.Endpoint)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("transcriber.endpoint: %q is not a valid URL", c.Transcriber.Endpoint)
		}
	}

	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}

	return nil
}
