// Package tx defines the transaction request/result value objects shared by
// every operator pipeline.
package tx

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/triopay/triopay/pkg/money"
)

// Kind is the kind of transaction being processed.
type Kind string

// Transaction kinds.
const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindTransfer   Kind = "transfer"
)

// IsValid reports whether k is one of the known transaction kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransfer:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k Kind) String() string { return string(k) }

// OperatorKind identifies one of the transaction-processing operators.
type OperatorKind string

// Operator kinds.
const (
	OperatorBank         OperatorKind = "bank"
	OperatorMobileMoney  OperatorKind = "mobile-money"
	OperatorMicrofinance OperatorKind = "microfinance"
)

// IsValid reports whether o is one of the known operators.
func (o OperatorKind) IsValid() bool {
	switch o {
	case OperatorBank, OperatorMobileMoney, OperatorMicrofinance:
		return true
	}
	return false
}

// String returns the string representation of the operator kind.
func (o OperatorKind) String() string { return string(o) }

// Request is a caller-owned, immutable transaction request.
// Construct it through NewRequest; the pipeline never mutates it.
type Request struct {
	SourceAccount string
	DestAccount   string // empty except for transfers
	Amount        money.Money
	Kind          Kind
	Description   string
}

// NewRequest builds a transaction request. It rejects unknown kinds and
// invalid currencies up front; amount positivity is a pipeline concern
// (validation rules report it as a step failure, not a construction error).
func NewRequest(
	source, dest string,
	amount money.Money,
	kind Kind,
	description string,
) (Request, error) {
	if !kind.IsValid() {
		return Request{}, fmt.Errorf("unknown transaction kind %q", kind)
	}
	if !amount.Currency().IsValid() {
		return Request{}, fmt.Errorf("%w: %q", money.ErrInvalidCurrency, amount.Currency())
	}
	return Request{
		SourceAccount: source,
		DestAccount:   dest,
		Amount:        amount,
		Kind:          kind,
		Description:   description,
	}, nil
}

// Result is the outcome of one pipeline run. Once produced it is never
// mutated; the processor either returns it to the caller or discards it.
//
// Invariant: Total always equals Amount + Fee, and Fee is never negative.
type Result struct {
	Success   bool
	ID        uuid.UUID // processor-generated transaction id
	Reference string    // operator settlement reference, empty on failure
	Amount    money.Money
	Fee       money.Money
	Total     money.Money
	Steps     []string // one human-readable line per executed pipeline step
	ErrReason string   // empty on success
}

// Failed reports whether the pipeline terminated in the FAILED state.
func (r *Result) Failed() bool { return !r.Success }
