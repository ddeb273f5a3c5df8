package cli

import (
	"time"

	"github.com/modbuild/pulse/internal/api"
	"github.com/modbuild/pulse/internal/config"
	"github.com/modbuild/pulse/internal/service"
)

// App holds the resolved configuration and every service the commands run
// against.
type App struct {
	Config config.Config

	Factories  service.FactoryService
	Health     service.HealthService
	Production service.ProductionService
	Workforce  service.WorkforceService
	Capacity   service.CapacityService
	Pipeline   service.PipelineService
	Snapshot   service.SnapshotService
	Seed       service.SeedService

	// IsInteractive reports whether stdin is a terminal, so prompts may be
	// shown.
	IsInteractive func() bool
	// Now pins the clock; nil means wall-clock time.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) apiServices() api.Services {
	return api.Services{
		Factories:  a.Factories,
		Health:     a.Health,
		Production: a.Production,
		Workforce:  a.Workforce,
		Capacity:   a.Capacity,
		Pipeline:   a.Pipeline,
		Snapshot:   a.Snapshot,
	}
}
