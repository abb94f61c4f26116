package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

// Logger wraps slog with printf-style helpers used across the voice stack.
type Logger struct {
	slog    *slog.Logger
	handler *textHandler
	file    *os.File
}

var (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// moduleColors highlights per-component log prefixes, e.g. "[VAD] ...".
var moduleColors = map[string]string{
	"[Session]":   "\x1b[94m",
	"[VAD]":       "\x1b[35m",
	"[Capture]":   "\x1b[96m",
	"[Playback]":  "\x1b[95m",
	"[Reconnect]": "\x1b[92m",
	"[Archive]":   "\x1b[34m",
	"[Peer]":      "\x1b[93m",
}

type textHandler struct {
	console io.Writer
	file    io.Writer
	level   slog.Level
	mu      sync.Mutex
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")

	var levelStr, levelColor string
	switch r.Level {
	case slog.LevelDebug:
		levelStr, levelColor = "DEBUG", colorDebug
	case slog.LevelInfo:
		levelStr, levelColor = "INFO", colorInfo
	case slog.LevelWarn:
		levelStr, levelColor = "WARN", colorWarn
	case slog.LevelError:
		levelStr, levelColor = "ERROR", colorError
	default:
		levelStr, levelColor = "INFO", colorReset
	}

	msg := r.Message
	msgColor := colorReset
	for prefix, color := range moduleColors {
		if strings.HasPrefix(msg, prefix) {
			msgColor = color
			break
		}
	}

	if h.console != nil {
		fmt.Fprintf(h.console, "%s[%s]%s %s[%s]%s %s%s%s\n",
			colorTime, timeStr, colorReset,
			levelColor, levelStr, colorReset,
			msgColor, msg, colorReset)
	}
	if h.file != nil {
		fmt.Fprintf(h.file, "[%s] [%s] %s\n", timeStr, levelStr, msg)
	}
	return nil
}

func (h *textHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *textHandler) WithGroup(_ string) slog.Handler      { return h }

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a Logger writing colored lines to stdout and plain lines to the
// configured log file when Dir is set.
func New(cfg Config) (*Logger, error) {
	handler := &textHandler{
		console: os.Stdout,
		level:   parseLevel(cfg.Level),
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := cfg.Filename
		if name == "" {
			name = "voice.log"
		}
		f, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		handler.file = f
	}

	return &Logger{
		slog:    slog.New(handler),
		handler: handler,
		file:    file,
	}, nil
}

// Slog exposes the structured logger for integrations that want it directly.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) Debug(format string, args ...any) {
	l.slog.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.slog.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.slog.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.slog.Error(fmt.Sprintf(format, args...))
}

// Close releases the log file handle, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
