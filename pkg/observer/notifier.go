package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/eventbus"
)

// OutboundMessage is one notification handed to a Sender.
type OutboundMessage struct {
	Recipient string
	Body      string
}

// Sender dispatches outbound messages. Implementations live outside the
// core (SMS, email, push); MemorySender is provided for tests and the
// demo wiring.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// MemorySender records messages instead of sending them.
type MemorySender struct {
	mu   sync.Mutex
	sent []OutboundMessage
}

// NewMemorySender creates an in-memory sender.
func NewMemorySender() *MemorySender { return &MemorySender{} }

// Send implements Sender.
func (s *MemorySender) Send(_ context.Context, msg OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (s *MemorySender) Sent() []OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OutboundMessage(nil), s.sent...)
}

// Notifier turns transaction and security events into outbound messages.
// Send failures are logged and swallowed: notification is best-effort and
// never disturbs the dispatch loop.
type Notifier struct {
	sender Sender
	log    *slog.Logger
	sent   atomic.Int64
}

// NewNotifier creates the notifying observer.
func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{sender: sender, log: logger.With("observer", "notifier")}
}

// Name implements eventbus.Observer.
func (n *Notifier) Name() string { return "notifier" }

// InterestedIn implements eventbus.Observer: transaction outcomes and
// security events produce notifications, nothing else does.
func (n *Notifier) InterestedIn(kind events.EventType) bool {
	return kind.IsTransaction() || kind.IsSecurity()
}

// OnEvent implements eventbus.Subscriber.
func (n *Notifier) OnEvent(ctx context.Context, e events.Event) {
	recipient := e.Field("account")
	if recipient == "" {
		recipient = e.Field("user")
	}
	if recipient == "" {
		recipient = "operations"
	}
	msg := OutboundMessage{
		Recipient: recipient,
		Body:      fmt.Sprintf("[%s] %s", e.Type, e.Message),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.log.Error("failed to send notification",
			"event_id", e.ID, "recipient", recipient, "error", err)
		return
	}
	n.sent.Add(1)
}

// SentCount returns the number of notifications dispatched so far.
func (n *Notifier) SentCount() int64 { return n.sent.Load() }

var _ eventbus.Observer = (*Notifier)(nil)
