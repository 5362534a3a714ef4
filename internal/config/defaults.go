package config

const (
	defaultDataDir         = "~/.local/share/minute"
	defaultLogDir          = "~/.local/share/minute/logs"
	defaultAudioSource     = "microphone_only"
	defaultSampleRate      = 16000
	defaultChannels        = 1
	defaultBitsPerSample   = 16
	defaultFinalizeTimeout = 5
	defaultShutdownTimeout = 3
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	defaultTranscriberModel   = "whisper-large-v3-turbo"
	defaultTranscriberTimeout = 300
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Audio: Audio{
			Source:        defaultAudioSource,
			SampleRate:    defaultSampleRate,
			Channels:      defaultChannels,
			BitsPerSample: defaultBitsPerSample,
		},
		Recording: Recording{
			FinalizeTimeout: defaultFinalizeTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Transcriber: Transcriber{
			Model:          defaultTranscriberModel,
			Language:       "en",
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Recording:      true,
			Transcripts:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
