// Package plog builds the structured logger shared across the pipeline's
// components: one slog.Logger per run, configured for JSON or text output,
// with a "component" attribute identifying which pipeline stage logged.
package plog

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the slog handler used for output.
type Format string

const (
	JSON Format = "json"
	Text Format = "text"
)

// Config controls logger construction.
type Config struct {
	Format Format
	Level  slog.Level
	Output io.Writer // defaults to os.Stderr
}

// New builds a root logger per Config. Diagnostics logged through it never
// abort the pipeline — only the caller decides whether a logged Warn
// should also become a fatal xerrors.Error.
func New(cfg Config) *slog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Component returns a logger tagged with the given pipeline component,
// e.g. plog.Component(root, "scipindex").
func Component(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("component", name)
}
