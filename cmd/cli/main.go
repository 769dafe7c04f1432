// Command cli drives a handful of sample transactions through every
// operator pipeline and prints the results, the observer counters and
// the raised alerts. Useful for eyeballing the whole flow end to end.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/triopay/triopay/infra/initializer"
	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/pkg/config"
	"github.com/triopay/triopay/pkg/domain/events"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/money"
)

type demo struct {
	operator tx.OperatorKind
	source   string
	dest     string
	amount   string
	kind     tx.Kind
}

var demos = []demo{
	{tx.OperatorBank, "0123456789", "", "10000", tx.KindDeposit},
	{tx.OperatorBank, "0123456789", "", "10000", tx.KindWithdrawal},
	{tx.OperatorMobileMoney, "0712345678", "", "3000", tx.KindDeposit},
	{tx.OperatorMobileMoney, "0712345678", "", "50000", tx.KindWithdrawal},
	{tx.OperatorMobileMoney, "0712345678", "", "300000", tx.KindWithdrawal}, // over ceiling
	{tx.OperatorMicrofinance, "MF-000123", "MF-000456", "10000", tx.KindTransfer},
	{tx.OperatorMicrofinance, "MF-000123", "", "500", tx.KindDeposit}, // fee waived
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	a := app.New(deps, cfg)
	ctx := context.Background()

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	faint := color.New(color.Faint)

	for _, d := range demos {
		proc, err := a.ProcessorFor(d.operator)
		if err != nil {
			return err
		}
		amount, err := money.New(d.amount, money.Code(cfg.Currency))
		if err != nil {
			return err
		}
		req, err := tx.NewRequest(d.source, d.dest, amount, d.kind, "demo")
		if err != nil {
			return err
		}

		res := proc.Process(ctx, req)
		if res.Success {
			green.Printf("%-13s %-10s %8s  fee %-6s total %-8s ref %s\n",
				d.operator, d.kind, d.amount,
				res.Fee.Amount(), res.Total.Amount(), res.Reference)
		} else {
			red.Printf("%-13s %-10s %8s  rejected: %s\n",
				d.operator, d.kind, d.amount, res.ErrReason)
		}
		for _, step := range res.Steps {
			faint.Println("    " + step)
		}
	}

	// Three failed logins in a row to trip the security watcher.
	for i := 0; i < 3; i++ {
		e := events.New(events.EventTypeLoginFailed, "auth", "login attempt failed",
			events.WithField("user", "demo-user"))
		if err := deps.Bus.Publish(ctx, e); err != nil {
			return err
		}
	}

	if err := a.Shutdown(ctx); err != nil {
		return err
	}

	snap := deps.Stats.SnapshotNow()
	fmt.Println()
	fmt.Printf("events seen:        %d\n", snap.Events)
	fmt.Printf("transactions:       %d\n", snap.Transactions)
	fmt.Printf("settled amount:     %s\n", snap.TotalAmount)
	fmt.Printf("log entries:        %d\n", deps.LogObserver.Entries())
	fmt.Printf("notifications sent: %d\n", deps.Notifier.SentCount())
	for _, alert := range deps.Security.Alerts() {
		red.Printf("alert: %d consecutive login failures for %s\n", alert.Failures, alert.User)
	}
	return nil
}
