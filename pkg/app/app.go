// Package app wires the transaction processors, the event bus and the
// observers into one runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/triopay/triopay/pkg/config"
	"github.com/triopay/triopay/pkg/domain/tx"
	"github.com/triopay/triopay/pkg/eventbus"
	"github.com/triopay/triopay/pkg/observer"
	"github.com/triopay/triopay/pkg/processor"
)

// Deps carries the constructed dependencies of the application.
type Deps struct {
	Logger     *slog.Logger
	Bus        *eventbus.Bus
	Processors map[tx.OperatorKind]*processor.Processor
	Audit      map[tx.OperatorKind]*processor.AuditLog

	LogObserver *observer.Logger
	Notifier    *observer.Notifier
	Sender      *observer.MemorySender
	Security    *observer.SecurityWatcher
	Stats       *observer.Stats
}

// App is the wired application.
type App struct {
	Deps *Deps
	Cfg  *config.App
}

// New wires the observers onto the bus and returns the application.
func New(deps *Deps, cfg *config.App) *App {
	a := &App{Deps: deps, Cfg: cfg}
	a.setupObservers()
	return a
}

// setupObservers attaches each observer for the event kinds its interest
// predicate accepts.
func (a *App) setupObservers() {
	bus := a.Deps.Bus
	bus.Attach(a.Deps.LogObserver)
	bus.Attach(a.Deps.Notifier)
	bus.Attach(a.Deps.Security)
	bus.Attach(a.Deps.Stats)
}

// ProcessorFor selects the operator specialization by its kind tag.
func (a *App) ProcessorFor(kind tx.OperatorKind) (*processor.Processor, error) {
	p, ok := a.Deps.Processors[kind]
	if !ok {
		return nil, fmt.Errorf("no processor for operator %q", kind)
	}
	return p, nil
}

// Shutdown drains the event bus. Safe to call once at process exit.
func (a *App) Shutdown(ctx context.Context) error {
	a.Deps.Logger.Info("shutting down, draining event bus")
	return a.Deps.Bus.Shutdown(ctx)
}
