// Package observer contains the canonical reactors registered on the
// event bus: a logger, a notifier, a security watcher and a statistics
// aggregator. Observers are independent; each keeps its own state with
// safe concurrent update, since OnEvent runs on bus worker goroutines
// while accessors are called from request-handling goroutines.
package observer

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/eventbus"
)

// Logger appends one structured log line per event and counts entries.
type Logger struct {
	log     *slog.Logger
	entries atomic.Int64
}

// NewLogger creates the logging observer.
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{log: logger.With("observer", "logger")}
}

// Name implements eventbus.Observer.
func (l *Logger) Name() string { return "logger" }

// InterestedIn implements eventbus.Observer; the logger sees everything.
func (l *Logger) InterestedIn(events.EventType) bool { return true }

// OnEvent implements eventbus.Subscriber.
func (l *Logger) OnEvent(_ context.Context, e events.Event) {
	l.entries.Add(1)
	l.log.Info(e.Message,
		"event_id", e.ID,
		"event_type", e.Type,
		"source", e.Source,
		"occurred_at", e.OccurredAt,
	)
}

// Entries returns the number of log entries written so far.
func (l *Logger) Entries() int64 { return l.entries.Load() }

var _ eventbus.Observer = (*Logger)(nil)
