package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/eventbus"
)

// DefaultLoginFailureThreshold is the number of consecutive login
// failures for one user that raises an alert.
const DefaultLoginFailureThreshold = 3

// Alert records a raised security alert.
type Alert struct {
	User     string
	Failures int
	RaisedAt time.Time
}

// SecurityWatcher tracks consecutive login failures per user and raises
// an alert once the threshold is reached. It is interested only in
// security-relevant event kinds; everything else passes it by untouched.
type SecurityWatcher struct {
	threshold int
	publisher eventbus.Publisher // optional; nil disables fraud events
	log       *slog.Logger

	mu       sync.Mutex
	failures map[string]int
	alerts   []Alert
}

// NewSecurityWatcher creates the watcher. A threshold below 1 falls back
// to DefaultLoginFailureThreshold. publisher may be nil.
func NewSecurityWatcher(
	threshold int,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *SecurityWatcher {
	if threshold < 1 {
		threshold = DefaultLoginFailureThreshold
	}
	return &SecurityWatcher{
		threshold: threshold,
		publisher: publisher,
		log:       logger.With("observer", "security"),
		failures:  make(map[string]int),
	}
}

// Name implements eventbus.Observer.
func (w *SecurityWatcher) Name() string { return "security-watcher" }

// InterestedIn implements eventbus.Observer. Fraud events are excluded
// even though the watcher publishes them, so it can never feed itself.
func (w *SecurityWatcher) InterestedIn(kind events.EventType) bool {
	return kind == events.EventTypeLoginFailed || kind == events.EventTypeLoginSucceeded
}

// OnEvent implements eventbus.Subscriber.
func (w *SecurityWatcher) OnEvent(ctx context.Context, e events.Event) {
	user := e.Field("user")
	if user == "" {
		return
	}
	switch e.Type {
	case events.EventTypeLoginSucceeded:
		w.mu.Lock()
		delete(w.failures, user)
		w.mu.Unlock()
	case events.EventTypeLoginFailed:
		w.recordFailure(ctx, user)
	}
}

func (w *SecurityWatcher) recordFailure(ctx context.Context, user string) {
	w.mu.Lock()
	w.failures[user]++
	count := w.failures[user]
	var raised bool
	if count >= w.threshold {
		w.alerts = append(w.alerts, Alert{User: user, Failures: count, RaisedAt: time.Now().UTC()})
		// Start a fresh window after raising.
		delete(w.failures, user)
		raised = true
	}
	w.mu.Unlock()

	if !raised {
		return
	}
	w.log.Warn("consecutive login failures crossed threshold",
		"user", user, "failures", count)
	if w.publisher == nil {
		return
	}
	fraud := events.New(
		events.EventTypeFraudSuspected,
		"security-watcher",
		fmt.Sprintf("%d consecutive login failures for user %s", count, user),
		events.WithField("user", user),
	)
	if err := w.publisher.Publish(ctx, fraud); err != nil {
		w.log.Error("failed to publish fraud event", "user", user, "error", err)
	}
}

// Alerts returns a copy of the alerts raised so far.
func (w *SecurityWatcher) Alerts() []Alert {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Alert(nil), w.alerts...)
}

// PendingFailures returns the current consecutive-failure count for a
// user (zero once an alert has been raised or a login succeeds).
func (w *SecurityWatcher) PendingFailures(user string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures[user]
}

var _ eventbus.Observer = (*SecurityWatcher)(nil)
