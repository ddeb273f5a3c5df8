package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/repository"
	"golang.org/x/sync/errgroup"
)

type productionService struct {
	factories    repository.FactoryRepo
	stations     repository.StationRepo
	shifts       repository.ShiftRepo
	modules      repository.ModuleRepo
	takt         repository.TaktRepo
	qc           repository.QCRepo
	defaultPlant domain.PlantConfig
	observer     UseCaseObserver
}

// NewProductionService scores the factory floor. defaultPlant stands in for
// factories that have no stored plant configuration.
func NewProductionService(store *repository.Store, defaultPlant domain.PlantConfig, observers ...UseCaseObserver) ProductionService {
	return &productionService{
		factories:    store.Factories,
		stations:     store.Stations,
		shifts:       store.Shifts,
		modules:      store.Modules,
		takt:         store.Takt,
		qc:           store.QC,
		defaultPlant: defaultPlant,
		observer:     useCaseObserverOrNoop(observers),
	}
}

// plantFor returns the factory's plant configuration, or the default when
// the factory has none on record.
func (s *productionService) plantFor(ctx context.Context, factoryID string) (domain.PlantConfig, error) {
	f, err := s.factories.GetByID(ctx, factoryID)
	if errors.Is(err, repository.ErrNotFound) {
		plant := s.defaultPlant
		plant.FactoryID = factoryID
		return plant, nil
	}
	if err != nil {
		return domain.PlantConfig{}, fmt.Errorf("loading plant config: %w", err)
	}
	return f.Plant, nil
}

func (s *productionService) OEE(ctx context.Context, req contract.OEERequest) contract.Result[metrics.OEEResult] {
	uc := startUseCase(s.observer, "oee", map[string]any{
		"factory_id": req.FactoryID,
		"from":       req.From.Format("2006-01-02"),
		"to":         req.To.Format("2006-01-02"),
	})
	fallback := metrics.ComputeOEE(metrics.OEEInput{From: req.From, To: req.To, Plant: s.defaultPlant})

	if err := req.Validate(); err != nil {
		err = invalid(err)
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	var (
		plant       domain.PlantConfig
		shifts      []*domain.ShiftRecord
		events      []*domain.TaktEvent
		inspections []*domain.QCRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		plant, err = s.plantFor(gctx, req.FactoryID)
		return err
	})
	g.Go(func() (err error) {
		shifts, err = s.shifts.ListBetween(gctx, req.FactoryID, req.From, req.To)
		return err
	})
	g.Go(func() (err error) {
		events, err = s.takt.ListBetween(gctx, req.FactoryID, req.From, req.To)
		return err
	})
	g.Go(func() (err error) {
		from, to := req.From, req.To
		inspections, err = s.qc.List(gctx, repository.QCFilter{FactoryID: req.FactoryID, From: &from, To: &to})
		return err
	})
	if err := g.Wait(); err != nil {
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	result := metrics.ComputeOEE(metrics.OEEInput{
		From:        req.From,
		To:          req.To,
		Plant:       plant,
		Shifts:      values(shifts),
		TaktEvents:  values(events),
		Inspections: values(inspections),
	})
	uc.fields["oee_pct"] = result.OEEPct
	uc.done(ctx, nil)
	return contract.OK(result)
}

func (s *productionService) fetchDefectCycles(ctx context.Context, req contract.DefectRequest) ([]metrics.DefectCycle, error) {
	if req.FactoryID == "" {
		return nil, invalid(errors.New("factory is required"))
	}
	records, err := s.qc.List(ctx, repository.QCFilter{
		FactoryID:  req.FactoryID,
		StationID:  req.StationID,
		From:       req.From,
		To:         req.To,
		ReworkOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("loading qc records: %w", err)
	}
	filter := metrics.DefectFilter{StationID: req.StationID, From: req.From, To: req.To}
	return metrics.DefectCycles(values(records), filter, contract.ResolveNow(req.Now)), nil
}

func (s *productionService) DefectCycles(ctx context.Context, req contract.DefectRequest) contract.Result[[]metrics.DefectCycle] {
	uc := startUseCase(s.observer, "defect-cycles", map[string]any{"factory_id": req.FactoryID, "station_id": req.StationID})
	cycles, err := s.fetchDefectCycles(ctx, req)
	if err != nil {
		uc.done(ctx, err)
		return failWith([]metrics.DefectCycle{}, err)
	}
	if cycles == nil {
		cycles = []metrics.DefectCycle{}
	}
	uc.fields["cycles"] = len(cycles)
	uc.done(ctx, nil)
	return contract.OK(cycles)
}

func (s *productionService) DefectStats(ctx context.Context, req contract.DefectRequest) contract.Result[metrics.DefectFixStats] {
	uc := startUseCase(s.observer, "defect-stats", map[string]any{"factory_id": req.FactoryID, "station_id": req.StationID})
	cycles, err := s.fetchDefectCycles(ctx, req)
	if err != nil {
		uc.done(ctx, err)
		return failWith(metrics.ComputeDefectFixStats(nil), err)
	}
	stats := metrics.ComputeDefectFixStats(cycles)
	uc.fields["ongoing"] = stats.Ongoing
	uc.done(ctx, nil)
	return contract.OK(stats)
}

func (s *productionService) LoadBoard(ctx context.Context, req contract.LoadBoardRequest) contract.Result[metrics.LoadBoardSnapshot] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "load-board", map[string]any{"factory_id": req.FactoryID})
	fallback := metrics.BuildLoadBoard(metrics.LoadBoardInput{Now: now, TargetThroughput: s.defaultPlant.TargetDailyThroughput})

	if req.FactoryID == "" {
		err := invalid(errors.New("factory is required"))
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	var (
		plant     domain.PlantConfig
		stations  []*domain.Station
		inFlight  []*domain.Module
		completed []*domain.Module
	)
	midnight, _ := dayBounds(now)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		plant, err = s.plantFor(gctx, req.FactoryID)
		return err
	})
	g.Go(func() (err error) {
		stations, err = s.stations.ListByFactory(gctx, req.FactoryID)
		return err
	})
	g.Go(func() (err error) {
		inFlight, err = s.modules.List(gctx, repository.ModuleFilter{
			FactoryID: req.FactoryID,
			Statuses:  domain.InFlightModuleStatuses,
		})
		return err
	})
	g.Go(func() (err error) {
		completed, err = s.modules.List(gctx, repository.ModuleFilter{
			FactoryID:     req.FactoryID,
			Statuses:      []domain.ModuleStatus{domain.ModuleCompleted, domain.ModuleShipped},
			CompletedFrom: &midnight,
			CompletedTo:   &now,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	snapshot := metrics.BuildLoadBoard(metrics.LoadBoardInput{
		Now:              now,
		TargetThroughput: plant.TargetDailyThroughput,
		Stations:         values(stations),
		InFlight:         values(inFlight),
		CompletedToday:   values(completed),
	})
	uc.fields["pace"] = string(snapshot.PaceStatus)
	uc.done(ctx, nil)
	return contract.OK(snapshot)
}
