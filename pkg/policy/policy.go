// Package policy defines the per-operator rule triples (validation, fee,
// limit) used by the transaction pipeline. Rules are pure functions of the
// request: stateless aside from configured constants, shared and read-only,
// so a single Set is safe to use from any number of concurrent pipeline runs.
package policy

import (
	"fmt"

	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/money"
)

// ValidationRule decides whether a request is well formed at all (account
// format, amount minimums). A failure is reported as *tx.ValidationError.
type ValidationRule func(req tx.Request) error

// FeeRule prices a request. It is a pure computation: no counters, no
// shared state.
type FeeRule func(req tx.Request) money.Money

// LimitRule enforces per-transaction ceilings, self-transfer rejection and
// similar constraints. A failure is reported as *tx.LimitError.
type LimitRule func(req tx.Request) error

// Set bundles the three rules for one operator.
type Set struct {
	Validate ValidationRule
	Fee      FeeRule
	Limit    LimitRule
}

// ForOperator returns the default rule set for the given operator.
func ForOperator(kind tx.OperatorKind) (Set, error) {
	switch kind {
	case tx.OperatorBank:
		return Bank(DefaultBankConfig()), nil
	case tx.OperatorMobileMoney:
		return MobileMoney(DefaultMobileMoneyConfig()), nil
	case tx.OperatorMicrofinance:
		return Microfinance(DefaultMicrofinanceConfig()), nil
	default:
		return Set{}, fmt.Errorf("unknown operator %q", kind)
	}
}
