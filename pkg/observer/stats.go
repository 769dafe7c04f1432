package observer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/eventbus"
)

// Snapshot is a point-in-time copy of the aggregator's totals.
type Snapshot struct {
	Events       int64                      `json:"events"`
	Transactions int64                      `json:"transactions"`
	TotalAmount  decimal.Decimal            `json:"total_amount"`
	ByKind       map[events.EventType]int64 `json:"by_kind"`
}

// Stats aggregates running totals across all event kinds: event count,
// completed-transaction count and the summed transaction amount.
type Stats struct {
	log *slog.Logger

	mu           sync.RWMutex
	events       int64
	transactions int64
	totalAmount  decimal.Decimal
	byKind       map[events.EventType]int64
}

// NewStats creates the statistics aggregator.
func NewStats(logger *slog.Logger) *Stats {
	return &Stats{
		log:    logger.With("observer", "stats"),
		byKind: make(map[events.EventType]int64),
	}
}

// Name implements eventbus.Observer.
func (s *Stats) Name() string { return "stats" }

// InterestedIn implements eventbus.Observer; statistics cover every kind.
func (s *Stats) InterestedIn(events.EventType) bool { return true }

// OnEvent implements eventbus.Subscriber. The amount payload field is
// written by the pipeline's notify hook; an unparsable value is counted
// as an event but contributes nothing to the sum.
func (s *Stats) OnEvent(_ context.Context, e events.Event) {
	var amount decimal.Decimal
	addAmount := false
	if e.Type == events.EventTypeTransactionCompleted {
		if raw := e.Field("amount"); raw != "" {
			parsed, err := decimal.NewFromString(raw)
			if err != nil {
				s.log.Warn("unparsable amount on transaction event",
					"event_id", e.ID, "amount", raw)
			} else {
				amount = parsed
				addAmount = true
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events++
	s.byKind[e.Type]++
	if e.Type == events.EventTypeTransactionCompleted {
		s.transactions++
	}
	if addAmount {
		s.totalAmount = s.totalAmount.Add(amount)
	}
}

// CountFor returns the number of events seen for one kind.
func (s *Stats) CountFor(kind events.EventType) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byKind[kind]
}

// SnapshotNow returns a copy of all totals.
func (s *Stats) SnapshotNow() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byKind := make(map[events.EventType]int64, len(s.byKind))
	for k, v := range s.byKind {
		byKind[k] = v
	}
	return Snapshot{
		Events:       s.events,
		Transactions: s.transactions,
		TotalAmount:  s.totalAmount,
		ByKind:       byKind,
	}
}

var _ eventbus.Observer = (*Stats)(nil)
