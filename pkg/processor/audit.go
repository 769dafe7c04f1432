package processor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/triopay/triopay/pkg/domain/tx"
)

// AuditEntry is one line of an operator's append-only audit trail.
type AuditEntry struct {
	TransactionID uuid.UUID
	Operator      tx.OperatorKind
	Kind          tx.Kind
	Account       string
	Amount        string
	Reference     string
	RecordedAt    time.Time
}

// AuditLog is an in-memory append-only audit trail, safe for concurrent
// writes from pipeline runs and reads from elsewhere.
type AuditLog struct {
	operator tx.OperatorKind

	mu      sync.RWMutex
	entries []AuditEntry
}

// NewAuditLog creates an empty audit trail for one operator.
func NewAuditLog(operator tx.OperatorKind) *AuditLog {
	return &AuditLog{operator: operator}
}

// Record implements AuditFunc.
func (l *AuditLog) Record(_ context.Context, req tx.Request, res *tx.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, AuditEntry{
		TransactionID: res.ID,
		Operator:      l.operator,
		Kind:          req.Kind,
		Account:       req.SourceAccount,
		Amount:        req.Amount.Amount().String(),
		Reference:     res.Reference,
		RecordedAt:    time.Now().UTC(),
	})
	return nil
}

// Entries returns a copy of the recorded entries.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]AuditEntry(nil), l.entries...)
}

// Len returns the number of recorded entries.
func (l *AuditLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
