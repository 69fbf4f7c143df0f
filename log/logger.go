// Package log builds the slog loggers used by runguard and decodes log
// records sent by monitored programs.
package log

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// Output formats.
const (
	FormatAuto = "auto" // text on a terminal, JSON otherwise
	FormatText = "text"
	FormatJSON = "json"
)

// loggerConfig holds configuration for NewLogger.
type loggerConfig struct {
	level     slog.Level
	format    string
	writer    io.Writer
	addSource bool
}

func defaultLoggerConfig() loggerConfig {
	return loggerConfig{
		level:  slog.LevelInfo,
		format: FormatAuto,
		writer: os.Stderr,
	}
}

// Option configures NewLogger.
type Option func(*loggerConfig)

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) Option {
	return func(c *loggerConfig) {
		c.level = level
	}
}

// WithFormat sets the output format: FormatAuto, FormatText or FormatJSON.
func WithFormat(format string) Option {
	return func(c *loggerConfig) {
		c.format = format
	}
}

// WithWriter sets the destination (default: os.Stderr).
func WithWriter(w io.Writer) Option {
	return func(c *loggerConfig) {
		c.writer = w
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) Option {
	return func(c *loggerConfig) {
		c.addSource = enabled
	}
}

// NewLogger creates a structured logger. In FormatAuto it writes text when
// the destination is a terminal and JSON when it is piped or redirected.
func NewLogger(opts ...Option) *slog.Logger {
	cfg := defaultLoggerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	options := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	if useText(cfg) {
		return slog.New(slog.NewTextHandler(cfg.writer, options))
	}
	return slog.New(slog.NewJSONHandler(cfg.writer, options))
}

func useText(cfg loggerConfig) bool {
	switch cfg.format {
	case FormatText:
		return true
	case FormatJSON:
		return false
	}
	f, ok := cfg.writer.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
