// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Init sets the default logger; OpenFile gives the TUI a log file off the terminal.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the log file created under the config directory
const FileName = "debug.log"

// Init configures the default slog logger.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	slog.SetDefault(New(w, level, format))
}

// New builds a logger without installing it
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// OpenFile opens <configDir>/debug.log for appending, creating the directory
// with owner-only permissions. While the TUI owns the terminal, logs go here.
func OpenFile(configDir string) (*os.File, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(configDir, FileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
