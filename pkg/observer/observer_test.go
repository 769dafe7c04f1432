package observer

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triopay/triopay/pkg/domain/events"
)

func TestLoggerCountsEntries(t *testing.T) {
	l := NewLogger(slog.Default())

	for i := 0; i < 4; i++ {
		l.OnEvent(context.Background(),
			events.New(events.EventTypeTransactionCreated, "test", "created"))
	}
	assert.Equal(t, int64(4), l.Entries())
	assert.True(t, l.InterestedIn(events.EventTypeBalanceLow))
}

func TestLoggerConcurrentUpdates(t *testing.T) {
	l := NewLogger(slog.Default())

	const goroutines = 10
	const perGoroutine = 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				l.OnEvent(context.Background(),
					events.New(events.EventTypeTransactionCompleted, "test", "done"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(goroutines*perGoroutine), l.Entries())
}

func TestNotifierBuildsAndCountsMessages(t *testing.T) {
	sender := NewMemorySender()
	n := NewNotifier(sender, slog.Default())

	n.OnEvent(context.Background(), events.New(
		events.EventTypeTransactionCompleted, "bank", "transaction settled",
		events.WithField("account", "0123456789"),
	))
	n.OnEvent(context.Background(), events.New(
		events.EventTypeLoginFailed, "auth", "bad password",
		events.WithField("user", "alice"),
	))

	assert.Equal(t, int64(2), n.SentCount())
	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "0123456789", sent[0].Recipient)
	assert.Contains(t, sent[0].Body, "Transaction.Completed")
	assert.Equal(t, "alice", sent[1].Recipient)
}

func TestNotifierInterest(t *testing.T) {
	n := NewNotifier(NewMemorySender(), slog.Default())

	assert.True(t, n.InterestedIn(events.EventTypeTransactionFailed))
	assert.True(t, n.InterestedIn(events.EventTypeFraudSuspected))
	assert.False(t, n.InterestedIn(events.EventTypeBalanceLow))
}

func loginFailed(user string) events.Event {
	return events.New(events.EventTypeLoginFailed, "auth", "bad password",
		events.WithField("user", user))
}

func TestSecurityWatcherRaisesAfterThreshold(t *testing.T) {
	w := NewSecurityWatcher(3, nil, slog.Default())

	for i := 0; i < 3; i++ {
		w.OnEvent(context.Background(), loginFailed("alice"))
	}

	alerts := w.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "alice", alerts[0].User)
	assert.Equal(t, 3, alerts[0].Failures)
	// The window restarts after an alert.
	assert.Equal(t, 0, w.PendingFailures("alice"))
}

func TestSecurityWatcherResetOnSuccess(t *testing.T) {
	w := NewSecurityWatcher(3, nil, slog.Default())

	w.OnEvent(context.Background(), loginFailed("bob"))
	w.OnEvent(context.Background(), loginFailed("bob"))
	w.OnEvent(context.Background(),
		events.New(events.EventTypeLoginSucceeded, "auth", "welcome back",
			events.WithField("user", "bob")))
	w.OnEvent(context.Background(), loginFailed("bob"))

	assert.Empty(t, w.Alerts(), "non-consecutive failures never alert")
	assert.Equal(t, 1, w.PendingFailures("bob"))
}

func TestSecurityWatcherTracksUsersIndependently(t *testing.T) {
	w := NewSecurityWatcher(2, nil, slog.Default())

	w.OnEvent(context.Background(), loginFailed("alice"))
	w.OnEvent(context.Background(), loginFailed("bob"))
	assert.Empty(t, w.Alerts())

	w.OnEvent(context.Background(), loginFailed("alice"))
	alerts := w.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "alice", alerts[0].User)
}

func TestSecurityWatcherIgnoresUnrelatedKinds(t *testing.T) {
	w := NewSecurityWatcher(3, nil, slog.Default())

	assert.False(t, w.InterestedIn(events.EventTypeTransactionCompleted))
	assert.False(t, w.InterestedIn(events.EventTypeBalanceLow))
	assert.False(t, w.InterestedIn(events.EventTypeFraudSuspected))
	assert.True(t, w.InterestedIn(events.EventTypeLoginFailed))
	assert.True(t, w.InterestedIn(events.EventTypeLoginSucceeded))
}

type capturingPublisher struct {
	mu        sync.Mutex
	published []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, e)
	return nil
}

func TestSecurityWatcherPublishesFraudEvent(t *testing.T) {
	pub := &capturingPublisher{}
	w := NewSecurityWatcher(2, pub, slog.Default())

	w.OnEvent(context.Background(), loginFailed("carol"))
	w.OnEvent(context.Background(), loginFailed("carol"))

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.published, 1)
	assert.Equal(t, events.EventTypeFraudSuspected, pub.published[0].Type)
	assert.Equal(t, "carol", pub.published[0].Field("user"))
}

func TestStatsAggregation(t *testing.T) {
	s := NewStats(slog.Default())

	s.OnEvent(context.Background(), events.New(
		events.EventTypeTransactionCompleted, "bank", "settled",
		events.WithField("amount", "3050"),
	))
	s.OnEvent(context.Background(), events.New(
		events.EventTypeTransactionCompleted, "mobile-money", "settled",
		events.WithField("amount", "50350"),
	))
	s.OnEvent(context.Background(),
		events.New(events.EventTypeTransactionFailed, "bank", "rejected"))
	s.OnEvent(context.Background(),
		events.New(events.EventTypeLoginFailed, "auth", "bad password"))

	snap := s.SnapshotNow()
	assert.Equal(t, int64(4), snap.Events)
	assert.Equal(t, int64(2), snap.Transactions)
	assert.True(t, snap.TotalAmount.Equal(mustDecimal(t, "53400")))
	assert.Equal(t, int64(2), snap.ByKind[events.EventTypeTransactionCompleted])
	assert.Equal(t, int64(1), snap.ByKind[events.EventTypeLoginFailed])
	assert.Equal(t, int64(1), s.CountFor(events.EventTypeTransactionFailed))
}

func TestStatsConcurrentUpdates(t *testing.T) {
	s := NewStats(slog.Default())

	const goroutines = 8
	const perGoroutine = 50
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				s.OnEvent(context.Background(), events.New(
					events.EventTypeTransactionCompleted, "bank", "settled",
					events.WithField("amount", "10"),
				))
			}
		}()
	}
	wg.Wait()

	snap := s.SnapshotNow()
	assert.Equal(t, int64(goroutines*perGoroutine), snap.Events)
	assert.True(t, snap.TotalAmount.Equal(mustDecimal(t, "4000")))
}
