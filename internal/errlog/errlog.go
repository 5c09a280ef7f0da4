// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package errlog writes the append-only failure log: one line per failed
// model call, kept across runs and never rotated.
package errlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Log appends failure events to a text log. It is safe for concurrent use.
type Log struct {
	logger *slog.Logger
	closer io.Closer
}

// Open appends to the log file at path, creating it if needed. Every line
// carries runID so events from parallel partitions can be told apart.
func Open(path, runID string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening error log %s: %w", path, err)
	}
	l := New(f, runID)
	l.closer = f
	return l, nil
}

// New writes log lines to w.
func New(w io.Writer, runID string) *Log {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelError})
	logger := slog.New(h)
	if runID != "" {
		logger = logger.With("run", runID)
	}
	return &Log{logger: logger}
}

// Discard returns a Log that drops everything.
func Discard() *Log {
	return New(io.Discard, "")
}

// Failure records one failure event.
func (l *Log) Failure(msg string, err error, attrs ...any) {
	if l == nil {
		return
	}
	l.logger.Error(msg, append(attrs, "error", err)...)
}

// Close closes the underlying file, if any.
func (l *Log) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
