package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOnly(t *testing.T) {
	logger, err := New(Config{Level: "debug"})

	require.NoError(t, err)
	assert.NotNil(t, logger.Slog())
	assert.NoError(t, logger.Close())
}

func TestNew_WithFile(t *testing.T) {
	dir := t.TempDir()

	logger, err := New(Config{Level: "info", Dir: dir, Filename: "test.log"})
	require.NoError(t, err)

	logger.Info("[Session] connected %s", "abc")
	logger.Debug("should be filtered at info level")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Session] connected abc")
	assert.NotContains(t, string(data), "filtered")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}
