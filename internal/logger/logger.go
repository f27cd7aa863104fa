// Package logger holds the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the global logger. It discards everything until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger.
type Options struct {
	Level slog.Level
	// Output receives log records. Nil means os.Stderr.
	Output io.Writer
	// File, when set, appends records to this path instead of Output.
	File string
	// JSON selects the JSON handler; the text handler is used otherwise.
	JSON bool
}

// Init replaces L and returns a function that closes any opened log file.
func Init(opts Options) (func() error, error) {
	out := opts.Output
	closer := func() error { return nil }

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return closer, err
		}
		out = f
		closer = f.Close
	}
	if out == nil {
		out = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, hopts))
	} else {
		L = slog.New(slog.NewTextHandler(out, hopts))
	}
	return closer, nil
}

// Discard resets L to drop all output.
func Discard() {
	L = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel accepts debug, info, warn/warning and error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }
