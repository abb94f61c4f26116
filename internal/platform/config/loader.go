package config

import (
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TicoDavid/RAGbox.co-sub003/internal/platform/errors"
)

// Loader reads configuration from an optional yaml file layered over defaults.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader for the given config file path. An empty path
// means defaults plus environment only.
func NewLoader(path string) *Loader {
	return &Loader{
		useDotEnv: true,
		path:      path,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration: defaults, then yaml file, then
// environment overrides for credentials.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := Defaults()

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, errors.Wrap(errors.KindConfig, "load", "read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "load", "parse config file", err)
		}
	}

	if key := os.Getenv("RAGBOX_API_KEY"); key != "" {
		cfg.Session.APIKey = key
	}
	if url := os.Getenv("RAGBOX_VOICE_BOOTSTRAP_URL"); url != "" {
		cfg.Session.BootstrapURL = url
	}

	return &Result{
		Config: cfg,
		Path:   l.path,
	}, nil
}
