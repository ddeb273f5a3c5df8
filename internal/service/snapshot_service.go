package service

import (
	"context"
	"time"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// SnapshotRequest scopes a full factory read-out.
type SnapshotRequest struct {
	Now                   *time.Time
	FactoryID             string
	FactoryCode           string
	OEEDays               int
	IncludeBackupProjects bool
}

// Snapshot is every scorer's Result for one factory at one instant.
type Snapshot struct {
	GeneratedAt   time.Time                                  `json:"generated_at"`
	FactoryID     string                                     `json:"factory_id"`
	FactoryCode   string                                     `json:"factory_code"`
	Portfolio     contract.Result[metrics.PortfolioHealth]   `json:"portfolio"`
	OEE           contract.Result[metrics.OEEResult]         `json:"oee"`
	Defects       contract.Result[metrics.DefectFixStats]    `json:"defects"`
	LoadBoard     contract.Result[metrics.LoadBoardSnapshot] `json:"load_board"`
	Utilization   contract.Result[metrics.UtilizationMatrix] `json:"utilization"`
	CrossTraining contract.Result[CrossTrainingReport]       `json:"cross_training"`
	Capacity      contract.Result[[]metrics.CapacityScore]   `json:"capacity"`
	Pipeline      contract.Result[metrics.PipelineForecast]  `json:"pipeline"`
}

// Errors lists the failures behind any defaulted metric.
func (s Snapshot) Errors() []error {
	var errs []error
	for _, err := range []error{
		s.Portfolio.Err(), s.OEE.Err(), s.Defects.Err(), s.LoadBoard.Err(),
		s.Utilization.Err(), s.CrossTraining.Err(), s.Capacity.Err(), s.Pipeline.Err(),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

type snapshotService struct {
	health     HealthService
	production ProductionService
	workforce  WorkforceService
	capacity   CapacityService
	pipeline   PipelineService
	observer   UseCaseObserver
}

func NewSnapshotService(
	health HealthService,
	production ProductionService,
	workforce WorkforceService,
	capacity CapacityService,
	pipeline PipelineService,
	observers ...UseCaseObserver,
) SnapshotService {
	return &snapshotService{
		health:     health,
		production: production,
		workforce:  workforce,
		capacity:   capacity,
		pipeline:   pipeline,
		observer:   useCaseObserverOrNoop(observers),
	}
}

// Snapshot runs every scorer concurrently against one pinned clock. Scorer
// failures stay inside their own Result.
func (s *snapshotService) Snapshot(ctx context.Context, req SnapshotRequest) Snapshot {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "snapshot", map[string]any{"factory_id": req.FactoryID})
	out := Snapshot{GeneratedAt: now, FactoryID: req.FactoryID, FactoryCode: req.FactoryCode}

	var g errgroup.Group
	g.Go(func() error {
		pr := contract.NewPortfolioRequest()
		pr.Now = &now
		pr.FactoryCode = req.FactoryCode
		out.Portfolio = s.health.Portfolio(ctx, pr)
		return nil
	})
	g.Go(func() error {
		out.OEE = s.production.OEE(ctx, contract.NewOEERequest(req.FactoryID, now, req.OEEDays))
		return nil
	})
	g.Go(func() error {
		out.Defects = s.production.DefectStats(ctx, contract.DefectRequest{Now: &now, FactoryID: req.FactoryID})
		return nil
	})
	g.Go(func() error {
		out.LoadBoard = s.production.LoadBoard(ctx, contract.LoadBoardRequest{Now: &now, FactoryID: req.FactoryID})
		return nil
	})
	g.Go(func() error {
		out.Utilization = s.workforce.Utilization(ctx, contract.UtilizationRequest{Now: &now, FactoryID: req.FactoryID, Date: now})
		return nil
	})
	g.Go(func() error {
		cr := contract.NewCrossTrainingRequest(req.FactoryID)
		cr.Now = &now
		out.CrossTraining = s.workforce.CrossTraining(ctx, cr)
		return nil
	})
	g.Go(func() error {
		out.Capacity = s.capacity.Capacity(ctx, contract.CapacityRequest{Now: &now, IncludeBackupProjects: req.IncludeBackupProjects})
		return nil
	})
	g.Go(func() error {
		out.Pipeline = s.pipeline.Forecast(ctx, contract.PipelineRequest{Now: &now, FactoryCode: req.FactoryCode})
		return nil
	})
	_ = g.Wait()

	failures := out.Errors()
	uc.fields["failed_metrics"] = len(failures)
	var err error
	if len(failures) > 0 {
		err = failures[0]
	}
	uc.done(ctx, err)
	return out
}
