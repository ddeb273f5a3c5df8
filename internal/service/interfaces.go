package service

import (
	"context"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/metrics"
)

// Every scorer returns a Result. On any fetch failure the Result carries the
// scorer's zero-input metric plus the error; partial fetches are discarded.

type HealthService interface {
	ProjectHealth(ctx context.Context, req contract.HealthRequest) contract.Result[metrics.HealthAssessment]
	Portfolio(ctx context.Context, req contract.PortfolioRequest) contract.Result[metrics.PortfolioHealth]
}

type ProductionService interface {
	OEE(ctx context.Context, req contract.OEERequest) contract.Result[metrics.OEEResult]
	DefectCycles(ctx context.Context, req contract.DefectRequest) contract.Result[[]metrics.DefectCycle]
	DefectStats(ctx context.Context, req contract.DefectRequest) contract.Result[metrics.DefectFixStats]
	LoadBoard(ctx context.Context, req contract.LoadBoardRequest) contract.Result[metrics.LoadBoardSnapshot]
}

type WorkforceService interface {
	Utilization(ctx context.Context, req contract.UtilizationRequest) contract.Result[metrics.UtilizationMatrix]
	CrossTraining(ctx context.Context, req contract.CrossTrainingRequest) contract.Result[CrossTrainingReport]
}

type CapacityService interface {
	Capacity(ctx context.Context, req contract.CapacityRequest) contract.Result[[]metrics.CapacityScore]
}

type PipelineService interface {
	Forecast(ctx context.Context, req contract.PipelineRequest) contract.Result[metrics.PipelineForecast]
}

type SnapshotService interface {
	Snapshot(ctx context.Context, req SnapshotRequest) Snapshot
}

type SeedService interface {
	Seed(ctx context.Context, opts SeedOptions) (*SeedResult, error)
}

// CrossTrainingReport pairs the certification grid with certifications
// nearing expiry.
type CrossTrainingReport struct {
	Matrix   metrics.CrossTrainingMatrix `json:"matrix"`
	Expiring []metrics.ExpiringCert      `json:"expiring"`
}
