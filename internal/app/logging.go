// Package app provides the main application structure and coordination.
package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/dshills/gridedit/internal/config"
)

// Logging holds the application logger and what it writes to.
// The level can be changed after construction, for example on a
// settings reload.
type Logging struct {
	Logger *slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// NewLogging builds a logger from the log settings. An empty File
// discards output: the terminal belongs to the grid.
func NewLogging(s config.LogSettings) (*Logging, error) {
	level, err := s.SlogLevel()
	if err != nil {
		return nil, err
	}
	lv := new(slog.LevelVar)
	lv.Set(level)

	if s.File == "" {
		return &Logging{Logger: slog.New(slog.DiscardHandler), level: lv}, nil
	}

	f, err := os.OpenFile(s.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, NewOperationError("open", s.File, err).WithContext("log file")
	}
	return &Logging{Logger: NewLogger(f, s.Format, lv), level: lv, closer: f}, nil
}

// NewLogger returns a text or JSON logger writing to w.
func NewLogger(w io.Writer, format string, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", "gridedit")
}

// SetLevel changes the minimum level.
func (l *Logging) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the minimum level.
func (l *Logging) Level() slog.Level {
	return l.level.Level()
}

// Close closes the log file, if any.
func (l *Logging) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
