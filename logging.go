package main

import (
	"io"
	"log/slog"
)

// newLogger builds the base logger for a run. Only the root command calls it;
// every other component receives a logger and scopes it with With.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// defaultLogger returns logger, or a logger that drops everything when nil.
func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}
