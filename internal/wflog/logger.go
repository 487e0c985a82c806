// Package wflog provides the concrete structured-logging implementation
// used by cmd/weaverctl. Core packages (graph, freshness, execution) never
// import this package and do no logging of their own. Logger satisfies the
// teacher's minimal Logger interface (internal/pluginengine.Logger:
// Printf(format string, args ...any)), so swapping the concrete logging
// library never touches the plugin engine.
//
// stdlib log/slog is the grounded choice: no complete example repo in the
// retrieval pack imports zap or zerolog, and the teacher's own logging
// surface is limited to *log.Logger (see DESIGN.md).
package wflog

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger adapts a *slog.Logger to the Printf(format, args...) interface
// expected by internal/pluginengine and other teacher-derived collaborators.
type Logger struct {
	slog *slog.Logger
}

// New returns a Logger writing structured JSON records to os.Stderr at the
// given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(h)}
}

// Printf satisfies the teacher's Logger interface by formatting the
// message and emitting it at Info level with no structured fields, since
// callers of Printf pass pre-formatted strings, not a key/value pairing.
func (l *Logger) Printf(format string, args ...any) {
	l.slog.Info(fmt.Sprintf(format, args...))
}

// Slog exposes the underlying structured logger for callers that want
// key/value fields rather than Printf formatting.
func (l *Logger) Slog() *slog.Logger { return l.slog }
