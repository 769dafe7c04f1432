// Package initializer builds the application dependency graph from
// configuration: logger, event bus singleton, observers and the three
// operator processors.
package initializer

import (
	"fmt"

	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/pkg/config"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/eventbus"
	"github.com/triopay/triopay/pkg/observer"
	"github.com/triopay/triopay/pkg/processor"
)

// InitializeDependencies constructs every dependency of the application.
// A bus construction failure is returned so startup aborts instead of
// running with an inconsistent singleton.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	logger := setupLogger(cfg.Log)

	bus, err := eventbus.Init(eventbus.Config{
		QueueSize:       cfg.Bus.QueueSize,
		Workers:         cfg.Bus.Workers,
		ShutdownTimeout: cfg.Bus.ShutdownTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	sender := observer.NewMemorySender()
	deps := &app.Deps{
		Logger:      logger,
		Bus:         bus,
		Processors:  make(map[tx.OperatorKind]*processor.Processor),
		Audit:       make(map[tx.OperatorKind]*processor.AuditLog),
		LogObserver: observer.NewLogger(logger),
		Notifier:    observer.NewNotifier(sender, logger),
		Sender:      sender,
		Security: observer.NewSecurityWatcher(
			cfg.Security.LoginFailureThreshold, bus, logger),
		Stats: observer.NewStats(logger),
	}

	for _, operator := range []tx.OperatorKind{
		tx.OperatorBank,
		tx.OperatorMobileMoney,
		tx.OperatorMicrofinance,
	} {
		trail := processor.NewAuditLog(operator)
		p, err := processor.ForOperator(operator, bus, logger,
			processor.WithAudit(trail.Record))
		if err != nil {
			return nil, fmt.Errorf("failed to build %s processor: %w", operator, err)
		}
		deps.Audit[operator] = trail
		deps.Processors[operator] = p
	}

	return deps, nil
}
