package policy

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/money"
)

// Account identifier formats per operator family.
var (
	bankAccountPattern  = regexp.MustCompile(`^\d{10,14}$`)
	msisdnPattern       = regexp.MustCompile(`^(?:\+?254|0)7\d{8}$`)
	memberNumberPattern = regexp.MustCompile(`^MF-\d{6}$`)
)

// BankConfig holds the tunable constants of the bank rule set.
type BankConfig struct {
	AccountPattern *regexp.Regexp
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal
	FeeRate        decimal.Decimal
	FeeFixed       decimal.Decimal
	DepositFactor  decimal.Decimal // applied to deposit fees only
}

// DefaultBankConfig returns the stock bank schedule: 1% + 50 flat, deposits
// pay half, transactions capped at 1,000,000.
func DefaultBankConfig() BankConfig {
	return BankConfig{
		AccountPattern: bankAccountPattern,
		MinAmount:      dec("100"),
		MaxAmount:      dec("1000000"),
		FeeRate:        dec("0.01"),
		FeeFixed:       dec("50"),
		DepositFactor:  dec("0.5"),
	}
}

// Bank builds the bank rule set from cfg.
func Bank(cfg BankConfig) Set {
	schedule := RateSchedule{
		Rate:  cfg.FeeRate,
		Fixed: cfg.FeeFixed,
		KindFactors: map[tx.Kind]decimal.Decimal{
			tx.KindDeposit: cfg.DepositFactor,
		},
	}
	return Set{
		Validate: accountAndMinimum(cfg.AccountPattern, "bank account", cfg.MinAmount),
		Fee:      schedule.FeeFor,
		Limit:    ceilingAndSelfTransfer(cfg.MaxAmount),
	}
}

// MobileMoneyConfig holds the tunable constants of the mobile-money rule set.
type MobileMoneyConfig struct {
	AccountPattern *regexp.Regexp
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal // hard per-transaction ceiling
	Schedule       TieredSchedule
}

// DefaultMobileMoneyConfig returns the stock mobile-money ladder:
// 0–5,000 ⇒ 50, 5,001–25,000 ⇒ 150, 25,001–100,000 ⇒ 350, above ⇒ 500,
// with a hard ceiling of 250,000 per transaction.
func DefaultMobileMoneyConfig() MobileMoneyConfig {
	return MobileMoneyConfig{
		AccountPattern: msisdnPattern,
		MinAmount:      dec("10"),
		MaxAmount:      dec("250000"),
		Schedule: TieredSchedule{
			Bands: []Band{
				{UpTo: dec("5000"), Fee: dec("50")},
				{UpTo: dec("25000"), Fee: dec("150")},
				{UpTo: dec("100000"), Fee: dec("350")},
			},
			OverflowFee: dec("500"),
		},
	}
}

// MobileMoney builds the mobile-money rule set from cfg.
func MobileMoney(cfg MobileMoneyConfig) Set {
	return Set{
		Validate: accountAndMinimum(cfg.AccountPattern, "phone number", cfg.MinAmount),
		Fee: func(req tx.Request) money.Money {
			return cfg.Schedule.FeeFor(req.Amount)
		},
		Limit: ceilingAndSelfTransfer(cfg.MaxAmount),
	}
}

// MicrofinanceConfig holds the tunable constants of the microfinance rule set.
type MicrofinanceConfig struct {
	AccountPattern *regexp.Regexp
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal
	FeeRate        decimal.Decimal
	WaiverBelow    decimal.Decimal // fees waived for amounts below this
	MemberFactor   decimal.Decimal // applied to member-to-member transfers
}

// DefaultMicrofinanceConfig returns the stock microfinance schedule: 1.5%,
// waived below 1,000, halved for member-to-member transfers, capped at 200,000.
func DefaultMicrofinanceConfig() MicrofinanceConfig {
	return MicrofinanceConfig{
		AccountPattern: memberNumberPattern,
		MinAmount:      dec("50"),
		MaxAmount:      dec("200000"),
		FeeRate:        dec("0.015"),
		WaiverBelow:    dec("1000"),
		MemberFactor:   dec("0.5"),
	}
}

// Microfinance builds the microfinance rule set from cfg. Transfers where
// both accounts are member numbers pay cfg.MemberFactor of the base fee.
func Microfinance(cfg MicrofinanceConfig) Set {
	schedule := RateSchedule{
		Rate:        cfg.FeeRate,
		WaiverBelow: cfg.WaiverBelow,
	}
	return Set{
		Validate: accountAndMinimum(cfg.AccountPattern, "member number", cfg.MinAmount),
		Fee: func(req tx.Request) money.Money {
			fee := schedule.FeeFor(req)
			if req.Kind == tx.KindTransfer && cfg.AccountPattern.MatchString(req.DestAccount) {
				fee = fee.Mul(cfg.MemberFactor)
			}
			return fee
		},
		Limit: ceilingAndSelfTransfer(cfg.MaxAmount),
	}
}

// accountAndMinimum builds the shared validation rule: positive amount,
// amount minimum, account format for the source and (for transfers) the
// destination.
func accountAndMinimum(
	pattern *regexp.Regexp,
	accountLabel string,
	minAmount decimal.Decimal,
) ValidationRule {
	return func(req tx.Request) error {
		if !req.Amount.IsPositive() {
			return &tx.ValidationError{Reason: "amount must be positive"}
		}
		if req.Amount.Amount().LessThan(minAmount) {
			return &tx.ValidationError{
				Reason: fmt.Sprintf("amount below minimum of %s", minAmount),
			}
		}
		if !pattern.MatchString(req.SourceAccount) {
			return &tx.ValidationError{
				Reason: fmt.Sprintf("malformed %s %q", accountLabel, req.SourceAccount),
			}
		}
		if req.Kind == tx.KindTransfer && !pattern.MatchString(req.DestAccount) {
			return &tx.ValidationError{
				Reason: fmt.Sprintf("malformed destination %s %q", accountLabel, req.DestAccount),
			}
		}
		return nil
	}
}

// ceilingAndSelfTransfer builds the shared limit rule: per-transaction
// ceiling plus self-transfer rejection.
func ceilingAndSelfTransfer(maxAmount decimal.Decimal) LimitRule {
	return func(req tx.Request) error {
		if req.Amount.Amount().GreaterThan(maxAmount) {
			return &tx.LimitError{
				Reason: fmt.Sprintf("amount exceeds per-transaction ceiling of %s", maxAmount),
			}
		}
		if req.Kind == tx.KindTransfer && req.SourceAccount == req.DestAccount {
			return &tx.LimitError{Reason: "source and destination accounts are the same"}
		}
		return nil
	}
}
