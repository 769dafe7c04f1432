// Package processor implements the fixed transaction pipeline. Every
// request passes through the same six ordered steps: validate, price,
// limit-check, execute, audit, notify. Operators differ only in the rule
// set and settlement behavior injected at construction; the step order
// itself is owned here and cannot be overridden.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/eventbus"
	"github.com/triopay/triopay/pkg/money"
	"github.com/triopay/triopay/pkg/policy"
)

// SettleFunc performs the operator-specific settlement action and returns
// the settlement reference. It runs only after validation, pricing and
// limit checks have all passed.
type SettleFunc func(ctx context.Context, req tx.Request, txID uuid.UUID) (string, error)

// AuditFunc records an audit entry for a completed execution. It is a
// best-effort hook: errors and panics are contained and never fail the
// transaction.
type AuditFunc func(ctx context.Context, req tx.Request, res *tx.Result) error

// Option configures a Processor.
type Option func(*Processor)

// WithSettle replaces the default settlement step.
func WithSettle(settle SettleFunc) Option {
	return func(p *Processor) { p.settle = settle }
}

// WithAudit installs an audit hook. Without one the audit step is a no-op.
func WithAudit(audit AuditFunc) Option {
	return func(p *Processor) { p.audit = audit }
}

// Processor runs the pipeline for one operator. Safe for concurrent use:
// requests are independent, and the running totals updated by the execute
// step use atomic/locked updates.
type Processor struct {
	operator tx.OperatorKind
	rules    policy.Set
	settle   SettleFunc
	audit    AuditFunc
	bus      eventbus.Publisher // nil disables the notify hook
	log      *slog.Logger

	processed atomic.Int64
	mu        sync.Mutex
	settled   decimal.Decimal // sum of executed amounts, owned by this instance
}

// New creates a processor for the given operator and rule set. bus may be
// nil, in which case the notify hook only writes its step line.
func New(
	operator tx.OperatorKind,
	rules policy.Set,
	bus eventbus.Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Processor {
	p := &Processor{
		operator: operator,
		rules:    rules,
		bus:      bus,
		log:      logger.With("processor", operator.String()),
	}
	p.settle = p.defaultSettle
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ForOperator creates a processor with the operator's default rule set.
func ForOperator(
	operator tx.OperatorKind,
	bus eventbus.Publisher,
	logger *slog.Logger,
	opts ...Option,
) (*Processor, error) {
	rules, err := policy.ForOperator(operator)
	if err != nil {
		return nil, err
	}
	return New(operator, rules, bus, logger, opts...), nil
}

// Operator returns the operator this processor settles for.
func (p *Processor) Operator() tx.OperatorKind { return p.operator }

// ProcessedCount returns the number of executed transactions.
func (p *Processor) ProcessedCount() int64 { return p.processed.Load() }

// SettledTotal returns the summed amount of executed transactions.
func (p *Processor) SettledTotal() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Process runs the pipeline synchronously on the caller's goroutine and
// blocks until it completes or fails. There is no retry within a single
// call. The returned result is immutable from the caller's point of view.
func (p *Processor) Process(ctx context.Context, req tx.Request) *tx.Result {
	res := &tx.Result{
		ID:     uuid.New(),
		Amount: req.Amount,
		Fee:    money.Zero(req.Amount.Currency()),
		Total:  req.Amount,
	}
	p.publish(ctx, events.New(
		events.EventTypeTransactionCreated,
		p.operator.String(),
		fmt.Sprintf("%s request received", req.Kind),
		events.WithField("tx_id", res.ID.String()),
		events.WithField("account", req.SourceAccount),
		events.WithField("amount", req.Amount.Amount().String()),
	))

	// Step 1: validate. Runs before any fee computation.
	if err := p.rules.Validate(req); err != nil {
		res.Steps = append(res.Steps, "validate: "+reason(err))
		return p.fail(ctx, req, res, err)
	}
	res.Steps = append(res.Steps, "validate: ok")

	// Step 2: price. Pure computation, no shared state touched.
	res.Fee = p.rules.Fee(req)
	total, err := req.Amount.Add(res.Fee)
	if err != nil {
		// A fee rule returning a foreign currency is a programming error.
		res.Steps = append(res.Steps, "price: "+err.Error())
		return p.fail(ctx, req, res, err)
	}
	res.Total = total
	res.Steps = append(res.Steps, fmt.Sprintf("price: fee %s, total %s", res.Fee, res.Total))

	// Step 3: limit-check. A failure still reports the computed fee.
	if err := p.rules.Limit(req); err != nil {
		res.Steps = append(res.Steps, "limit-check: "+reason(err))
		return p.fail(ctx, req, res, err)
	}
	res.Steps = append(res.Steps, "limit-check: ok")

	// Step 4: execute. The only step with externally visible side effects.
	ref, err := p.settle(ctx, req, res.ID)
	if err != nil {
		res.Steps = append(res.Steps, "execute: "+reason(err))
		return p.fail(ctx, req, res, err)
	}
	res.Reference = ref
	res.Steps = append(res.Steps, "execute: settled, reference "+ref)
	p.processed.Add(1)
	p.mu.Lock()
	p.settled = p.settled.Add(req.Amount.Amount())
	p.mu.Unlock()

	// Step 5: audit hook, best-effort.
	res.Steps = append(res.Steps, p.runAudit(ctx, req, res))

	// Step 6: notify hook, best-effort.
	res.Success = true
	res.Steps = append(res.Steps, p.runNotify(ctx, req, res))

	return res
}

// fail finalizes a failure result and publishes the outcome event. The
// event is not a pipeline step and adds no step line, so the result's log
// still names exactly the steps that ran.
func (p *Processor) fail(
	ctx context.Context,
	req tx.Request,
	res *tx.Result,
	cause error,
) *tx.Result {
	res.Success = false
	res.ErrReason = reason(cause)
	p.log.Warn("transaction rejected",
		"tx_id", res.ID, "kind", req.Kind, "reason", res.ErrReason)
	p.publish(ctx, events.New(
		events.EventTypeTransactionFailed,
		p.operator.String(),
		fmt.Sprintf("%s rejected: %s", req.Kind, res.ErrReason),
		events.WithField("tx_id", res.ID.String()),
		events.WithField("account", req.SourceAccount),
		events.WithField("reason", res.ErrReason),
	))
	return res
}

// runAudit invokes the audit hook, containing any error or panic.
func (p *Processor) runAudit(ctx context.Context, req tx.Request, res *tx.Result) (line string) {
	if p.audit == nil {
		return "audit: ok"
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic recovered in audit hook", "tx_id", res.ID, "panic", r)
			line = "audit: skipped (best effort)"
		}
	}()
	if err := p.audit(ctx, req, res); err != nil {
		p.log.Error("audit hook failed", "tx_id", res.ID, "error", err)
		return "audit: skipped (best effort)"
	}
	return "audit: ok"
}

// runNotify publishes the completion event, containing any failure.
func (p *Processor) runNotify(ctx context.Context, req tx.Request, res *tx.Result) string {
	e := events.New(
		events.EventTypeTransactionCompleted,
		p.operator.String(),
		fmt.Sprintf("%s completed", req.Kind),
		events.WithField("tx_id", res.ID.String()),
		events.WithField("reference", res.Reference),
		events.WithField("account", req.SourceAccount),
		events.WithField("amount", req.Amount.Amount().String()),
		events.WithField("fee", res.Fee.Amount().String()),
	)
	if !p.publish(ctx, e) {
		return "notify: skipped (best effort)"
	}
	return "notify: published"
}

// publish sends an event to the bus, swallowing failures: outcome events
// are best-effort and never escalate to the caller.
func (p *Processor) publish(ctx context.Context, e events.Event) bool {
	if p.bus == nil {
		return false
	}
	if err := p.bus.Publish(ctx, e); err != nil {
		p.log.Error("failed to publish event",
			"event_type", e.Type, "error", err)
		return false
	}
	return true
}

// defaultSettle generates an operator-prefixed settlement reference.
func (p *Processor) defaultSettle(_ context.Context, _ tx.Request, txID uuid.UUID) (string, error) {
	return refPrefix(p.operator) + "-" + strings.ToUpper(txID.String()[:8]), nil
}

func refPrefix(operator tx.OperatorKind) string {
	switch operator {
	case tx.OperatorBank:
		return "BNK"
	case tx.OperatorMobileMoney:
		return "MMO"
	case tx.OperatorMicrofinance:
		return "MFI"
	default:
		return "TXN"
	}
}

// reason extracts the human-readable reason from the rule error taxonomy.
func reason(err error) string {
	var valErr *tx.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Reason
	}
	var limErr *tx.LimitError
	if errors.As(err, &limErr) {
		return limErr.Reason
	}
	return err.Error()
}
