package lint

import (
	"context"
	"log/slog"
)

// Reporter receives rendered warning messages. Implementations must be safe
// for concurrent use when a Linter is shared across goroutines.
type Reporter interface {
	Report(message string)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(message string)

// Report calls f.
func (f ReporterFunc) Report(message string) { f(message) }

// LogReporter reports warnings through a structured logger.
type LogReporter struct {
	Logger *slog.Logger
}

// Report logs the message at warn level.
func (r LogReporter) Report(message string) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, message)
}

type discardReporter struct{}

func (discardReporter) Report(string) {}

// DiscardReporter drops every message.
var DiscardReporter Reporter = discardReporter{}
