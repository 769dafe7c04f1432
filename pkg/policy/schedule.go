package policy

import (
	"github.com/shopspring/decimal"

	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/money"
)

// Band is one rung of a tiered fee ladder: any amount up to and including
// UpTo pays the band's fixed Fee.
type Band struct {
	UpTo decimal.Decimal
	Fee  decimal.Decimal
}

// TieredSchedule prices a request by amount band. Bands must be ordered by
// ascending UpTo; amounts above the last band pay OverflowFee.
type TieredSchedule struct {
	Bands       []Band
	OverflowFee decimal.Decimal
}

// FeeFor returns the fixed fee of the first band containing the amount,
// denominated in the amount's currency.
func (s TieredSchedule) FeeFor(amount money.Money) money.Money {
	a := amount.Amount()
	for _, band := range s.Bands {
		if a.LessThanOrEqual(band.UpTo) {
			fee, _ := money.FromDecimal(band.Fee, amount.Currency())
			return fee
		}
	}
	fee, _ := money.FromDecimal(s.OverflowFee, amount.Currency())
	return fee
}

// RateSchedule prices a request as a percentage of the amount plus a fixed
// component, optionally scaled per transaction kind (e.g. halving deposits)
// and waived entirely below a floor.
type RateSchedule struct {
	Rate        decimal.Decimal             // e.g. 0.01 for 1%
	Fixed       decimal.Decimal             // flat component added after the rate
	KindFactors map[tx.Kind]decimal.Decimal // missing kinds use factor 1
	WaiverBelow decimal.Decimal             // zero fee for amounts strictly below; zero disables
}

// FeeFor computes rate*amount + fixed, scaled by the kind factor, in the
// amount's currency. The result is never negative.
func (s RateSchedule) FeeFor(req tx.Request) money.Money {
	amount := req.Amount
	if !s.WaiverBelow.IsZero() && amount.Amount().LessThan(s.WaiverBelow) {
		return money.Zero(amount.Currency())
	}
	fee := amount.Amount().Mul(s.Rate).Add(s.Fixed)
	if factor, ok := s.KindFactors[req.Kind]; ok {
		fee = fee.Mul(factor)
	}
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	m, _ := money.FromDecimal(fee, amount.Currency())
	return m
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
