package config

import "time"

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Session   SessionConfig   `yaml:"session"`
	Audio     AudioConfig     `yaml:"audio"`
	VAD       VADConfig       `yaml:"vad"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// SessionConfig describes how the engine reaches the remote voice agent.
// BootstrapURL is an authenticated HTTP endpoint returning a short-lived
// tokenized websocket URL; credentials never appear in a static connect URL.
type SessionConfig struct {
	BootstrapURL   string        `yaml:"bootstrap_url"`
	APIKey         string        `yaml:"api_key"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Privileged     bool          `yaml:"privileged"`

	// FoldIdleAlways folds transient peer-asserted idle states even outside
	// VAD mode. Default false: only VAD sessions fold them.
	FoldIdleAlways bool `yaml:"fold_idle_always"`
}

type AudioConfig struct {
	CaptureSampleRate  int    `yaml:"capture_sample_rate"`
	PlaybackSampleRate int    `yaml:"playback_sample_rate"`
	FrameSize          int    `yaml:"frame_size"`
	Channels           int    `yaml:"channels"`
	TTSFormat          string `yaml:"tts_format"` // pcm or mp3
}

// VADConfig is immutable for the lifetime of a VAD session; changing it
// requires restarting capture.
type VADConfig struct {
	Threshold       float64       `yaml:"threshold"`
	Silence         time.Duration `yaml:"silence"`
	MinSpeech       time.Duration `yaml:"min_speech"`
	SmoothingFactor float64       `yaml:"smoothing_factor"`
}

type ReconnectConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}
