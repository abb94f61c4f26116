package config

import "time"

// Defaults returns the baseline configuration applied before file overrides.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
			File:  "voice.log",
		},
		Session: SessionConfig{
			BootstrapURL:   "http://localhost:8090/api/voice/session",
			ConnectTimeout: 15 * time.Second,
		},
		Audio: AudioConfig{
			CaptureSampleRate:  16000,
			PlaybackSampleRate: 24000,
			FrameSize:          4096,
			Channels:           1,
			TTSFormat:          "pcm",
		},
		VAD: VADConfig{
			Threshold:       0.015,
			Silence:         1500 * time.Millisecond,
			MinSpeech:       300 * time.Millisecond,
			SmoothingFactor: 0.2,
		},
		Reconnect: ReconnectConfig{
			Enabled:     true,
			Interval:    3 * time.Second,
			MaxAttempts: 5,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			DSN:     "voice_history.db",
		},
	}
}
