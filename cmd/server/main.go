package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	log "github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/triopay/triopay/infra/initializer"
	"github.com/triopay/triopay/pkg/app"
	"github.com/triopay/triopay/pkg/config"
	"github.com/triopay/triopay/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	a := app.New(deps, cfg)
	fapp := webapi.NewApp(a)

	deps.Logger.Info("starting server",
		"env", cfg.Env,
		"addr", cfg.Server.Addr(),
		"bus_workers", cfg.Bus.Workers,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return fapp.Listen(cfg.Server.Addr())
	})
	g.Go(func() error {
		<-ctx.Done()
		deps.Logger.Info("shutdown signal received")
		if err := fapp.ShutdownWithTimeout(10 * time.Second); err != nil {
			deps.Logger.Error("http shutdown failed", "error", err)
		}
		return a.Shutdown(context.Background())
	})

	return g.Wait()
}
