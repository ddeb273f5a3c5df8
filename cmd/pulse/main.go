package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/modbuild/pulse/internal/cli"
	"github.com/modbuild/pulse/internal/config"
	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/repository"
	"github.com/modbuild/pulse/internal/service"
	"github.com/modbuild/pulse/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.Options{
		Env:              config.EnvMap(os.Environ()),
		Wire:             wire,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		StdoutIsTerminal: isTerminal(os.Stdout.Fd()),
	}, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// wire opens the store named by cfg and builds every service over it.
func wire(cfg config.Config) (*cli.App, func() error, error) {
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	store := repository.NewStore(database)
	uow := db.NewSQLiteUnitOfWork(database)

	observers := service.MultiObserver{telemetry.NewObserver()}
	if cfg.LogCalls {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	app := &cli.App{
		Config:     cfg,
		Factories:  service.NewFactoryService(store.Factories),
		Health:     service.NewHealthService(store.Projects, store.WorkItems, observers),
		Production: service.NewProductionService(store, cfg.PlantConfig(""), observers),
		Workforce:  service.NewWorkforceService(store, observers),
		Capacity:   service.NewCapacityService(store.Members, store.Projects, store.WorkItems, cfg.CapacityWeights(), observers),
		Pipeline:   service.NewPipelineService(store.Quotes, observers),
		Seed:       service.NewSeedService(uow, observers),
		IsInteractive: func() bool {
			return isTerminal(os.Stdin.Fd())
		},
	}
	app.Snapshot = service.NewSnapshotService(app.Health, app.Production, app.Workforce, app.Capacity, app.Pipeline, observers)
	return app, database.Close, nil
}
