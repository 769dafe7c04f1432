package processor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/money"
)

// recordingPublisher captures published events without a running bus.
type recordingPublisher struct {
	mu        sync.Mutex
	published []events.Event
	fail      bool
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	if p.fail {
		return errors.New("bus unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, e)
	return nil
}

func (p *recordingPublisher) byType(kind events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.published {
		if e.Type == kind {
			out = append(out, e)
		}
	}
	return out
}

func newBankProcessor(t *testing.T, pub *recordingPublisher, opts ...Option) *Processor {
	t.Helper()
	p, err := ForOperator(tx.OperatorBank, pub, slog.Default(), opts...)
	require.NoError(t, err)
	return p
}

func bankRequest(t *testing.T, amount string, kind tx.Kind) tx.Request {
	t.Helper()
	req, err := tx.NewRequest("0123456789", "", money.Must(amount, money.KES), kind, "test")
	require.NoError(t, err)
	return req
}

func TestProcessSuccessRunsAllSteps(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub)

	res := p.Process(context.Background(), bankRequest(t, "10000", tx.KindWithdrawal))

	require.True(t, res.Success)
	assert.Empty(t, res.ErrReason)
	assert.NotEqual(t, uuid.Nil, res.ID)
	assert.Contains(t, res.Reference, "BNK-")

	require.Len(t, res.Steps, 6)
	assert.Equal(t, "validate: ok", res.Steps[0])
	assert.Contains(t, res.Steps[1], "price: fee")
	assert.Equal(t, "limit-check: ok", res.Steps[2])
	assert.Contains(t, res.Steps[3], "execute: settled")
	assert.Equal(t, "audit: ok", res.Steps[4])
	assert.Equal(t, "notify: published", res.Steps[5])
}

func TestTotalEqualsAmountPlusFee(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub)

	for _, amount := range []string{"100", "5000", "10000", "999999"} {
		res := p.Process(context.Background(), bankRequest(t, amount, tx.KindWithdrawal))
		require.True(t, res.Success, "amount %s", amount)

		want, err := res.Amount.Add(res.Fee)
		require.NoError(t, err)
		assert.True(t, res.Total.Equals(want), "total must equal amount plus fee")
		assert.False(t, res.Fee.IsNegative())
	}
}

func TestNonPositiveAmountFailsAtValidateOnly(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub)

	res := p.Process(context.Background(), bankRequest(t, "-10", tx.KindDeposit))

	require.False(t, res.Success)
	assert.Equal(t, "amount must be positive", res.ErrReason)
	require.Len(t, res.Steps, 1, "only the validate step ran")
	assert.Contains(t, res.Steps[0], "validate:")
	assert.True(t, res.Fee.IsZero())
	assert.True(t, res.Total.Equals(res.Amount))
	assert.Empty(t, res.Reference)
}

func TestLimitFailureStillReportsFee(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub)

	res := p.Process(context.Background(), bankRequest(t, "2000000", tx.KindWithdrawal))

	require.False(t, res.Success)
	assert.Contains(t, res.ErrReason, "ceiling")
	// validate, price, limit-check ran; execute did not.
	require.Len(t, res.Steps, 3)
	assert.False(t, res.Fee.IsZero(), "fee computed before the limit check is reported")
	assert.Empty(t, res.Reference)
	assert.Equal(t, int64(0), p.ProcessedCount())
}

func TestOutcomeEventsPublished(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub)

	okRes := p.Process(context.Background(), bankRequest(t, "10000", tx.KindDeposit))
	badRes := p.Process(context.Background(), bankRequest(t, "-1", tx.KindDeposit))

	created := pub.byType(events.EventTypeTransactionCreated)
	completed := pub.byType(events.EventTypeTransactionCompleted)
	failed := pub.byType(events.EventTypeTransactionFailed)

	assert.Len(t, created, 2)
	require.Len(t, completed, 1)
	require.Len(t, failed, 1)
	assert.Equal(t, okRes.ID.String(), completed[0].Field("tx_id"))
	assert.Equal(t, "10000", completed[0].Field("amount"))
	assert.Equal(t, badRes.ID.String(), failed[0].Field("tx_id"))
	assert.Equal(t, "amount must be positive", failed[0].Field("reason"))
}

func TestNotifyFailureIsBestEffort(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	p := newBankProcessor(t, pub)

	res := p.Process(context.Background(), bankRequest(t, "10000", tx.KindDeposit))

	require.True(t, res.Success, "publish failure never fails the transaction")
	assert.Equal(t, "notify: skipped (best effort)", res.Steps[5])
}

func TestAuditFailureIsBestEffort(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub, WithAudit(
		func(context.Context, tx.Request, *tx.Result) error {
			return errors.New("audit store down")
		},
	))

	res := p.Process(context.Background(), bankRequest(t, "10000", tx.KindDeposit))

	require.True(t, res.Success)
	assert.Equal(t, "audit: skipped (best effort)", res.Steps[4])
}

func TestAuditPanicIsContained(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub, WithAudit(
		func(context.Context, tx.Request, *tx.Result) error {
			panic("audit bug")
		},
	))

	res := p.Process(context.Background(), bankRequest(t, "10000", tx.KindDeposit))

	require.True(t, res.Success)
	assert.Equal(t, "audit: skipped (best effort)", res.Steps[4])
}

func TestAuditLogRecordsExecutedTransactions(t *testing.T) {
	pub := &recordingPublisher{}
	trail := NewAuditLog(tx.OperatorBank)
	p := newBankProcessor(t, pub, WithAudit(trail.Record))

	p.Process(context.Background(), bankRequest(t, "10000", tx.KindDeposit))
	p.Process(context.Background(), bankRequest(t, "-1", tx.KindDeposit)) // fails, no audit

	require.Equal(t, 1, trail.Len())
	entry := trail.Entries()[0]
	assert.Equal(t, tx.KindDeposit, entry.Kind)
	assert.Equal(t, "0123456789", entry.Account)
	assert.Contains(t, entry.Reference, "BNK-")
}

func TestSettleFailureFailsTransaction(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub, WithSettle(
		func(context.Context, tx.Request, uuid.UUID) (string, error) {
			return "", errors.New("ledger unavailable")
		},
	))

	res := p.Process(context.Background(), bankRequest(t, "10000", tx.KindDeposit))

	require.False(t, res.Success)
	assert.Equal(t, "ledger unavailable", res.ErrReason)
	require.Len(t, res.Steps, 4)
	assert.Equal(t, int64(0), p.ProcessedCount())
}

func TestConcurrentProcessKeepsTotalsConsistent(t *testing.T) {
	pub := &recordingPublisher{}
	p := newBankProcessor(t, pub)

	const goroutines = 8
	const perGoroutine = 25
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				res := p.Process(context.Background(), bankRequest(t, "100", tx.KindDeposit))
				assert.True(t, res.Success)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*perGoroutine), p.ProcessedCount())
	want := decimal.RequireFromString("100").
		Mul(decimal.NewFromInt(goroutines * perGoroutine))
	assert.True(t, p.SettledTotal().Equal(want))
}

func TestProcessorWithoutBus(t *testing.T) {
	p, err := ForOperator(tx.OperatorMobileMoney, nil, slog.Default())
	require.NoError(t, err)

	req, err := tx.NewRequest("0712345678", "", money.Must("3000", money.KES), tx.KindDeposit, "")
	require.NoError(t, err)
	res := p.Process(context.Background(), req)

	require.True(t, res.Success)
	assert.True(t, res.Fee.Equals(money.Must("50", money.KES)))
	assert.Equal(t, "notify: skipped (best effort)", res.Steps[5])
	assert.Contains(t, res.Reference, "MMO-")
}

func TestForOperatorUnknown(t *testing.T) {
	_, err := ForOperator("postal-bank", nil, slog.Default())
	assert.Error(t, err)
}
