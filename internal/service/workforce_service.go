package service

import (
	"context"
	"errors"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/repository"
	"golang.org/x/sync/errgroup"
)

type workforceService struct {
	stations       repository.StationRepo
	workers        repository.WorkerRepo
	shifts         repository.ShiftRepo
	assignments    repository.AssignmentRepo
	certifications repository.CertificationRepo
	observer       UseCaseObserver
}

func NewWorkforceService(store *repository.Store, observers ...UseCaseObserver) WorkforceService {
	return &workforceService{
		stations:       store.Stations,
		workers:        store.Workers,
		shifts:         store.Shifts,
		assignments:    store.Assignments,
		certifications: store.Certifications,
		observer:       useCaseObserverOrNoop(observers),
	}
}

func (s *workforceService) Utilization(ctx context.Context, req contract.UtilizationRequest) contract.Result[metrics.UtilizationMatrix] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "utilization", map[string]any{
		"factory_id": req.FactoryID,
		"date":       req.Date.Format("2006-01-02"),
	})
	fallback := metrics.BuildUtilizationMatrix(metrics.UtilizationInput{Date: req.Date, Now: now})

	if err := req.Validate(); err != nil {
		err = invalid(err)
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	var (
		workers     []*domain.Worker
		stations    []*domain.Station
		shifts      []*domain.ShiftRecord
		assignments []*domain.StationAssignment
	)
	dayStart, dayEnd := dayBounds(req.Date)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		workers, err = s.workers.ListByFactory(gctx, req.FactoryID, true)
		return err
	})
	g.Go(func() (err error) {
		stations, err = s.stations.ListByFactory(gctx, req.FactoryID)
		return err
	})
	g.Go(func() (err error) {
		shifts, err = s.shifts.ListBetween(gctx, req.FactoryID, dayStart, dayEnd)
		return err
	})
	g.Go(func() (err error) {
		assignments, err = s.assignments.ListOverlapping(gctx, req.FactoryID, dayStart, dayEnd)
		return err
	})
	if err := g.Wait(); err != nil {
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	matrix := metrics.BuildUtilizationMatrix(metrics.UtilizationInput{
		Date:        req.Date,
		Now:         now,
		Workers:     values(workers),
		Stations:    values(stations),
		Shifts:      values(shifts),
		Assignments: values(assignments),
	})
	uc.fields["workers"] = len(matrix.Workers)
	uc.done(ctx, nil)
	return contract.OK(matrix)
}

func (s *workforceService) CrossTraining(ctx context.Context, req contract.CrossTrainingRequest) contract.Result[CrossTrainingReport] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "cross-training", map[string]any{"factory_id": req.FactoryID})
	fallback := CrossTrainingReport{
		Matrix:   metrics.BuildCrossTrainingMatrix(metrics.CrossTrainingInput{}),
		Expiring: []metrics.ExpiringCert{},
	}

	if req.FactoryID == "" {
		err := invalid(errors.New("factory is required"))
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	var (
		workers  []*domain.Worker
		stations []*domain.Station
		certs    []*domain.CertificationRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		workers, err = s.workers.ListByFactory(gctx, req.FactoryID, true)
		return err
	})
	g.Go(func() (err error) {
		stations, err = s.stations.ListByFactory(gctx, req.FactoryID)
		return err
	})
	g.Go(func() (err error) {
		certs, err = s.certifications.ListByFactory(gctx, req.FactoryID)
		return err
	})
	if err := g.Wait(); err != nil {
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	certValues := values(certs)
	report := CrossTrainingReport{
		Matrix: metrics.BuildCrossTrainingMatrix(metrics.CrossTrainingInput{
			Workers:        values(workers),
			Stations:       values(stations),
			Certifications: certValues,
		}),
		Expiring: metrics.ExpiringWithin(certValues, now, req.ExpiringWithinDays),
	}
	if report.Expiring == nil {
		report.Expiring = []metrics.ExpiringCert{}
	}
	uc.fields["expiring"] = len(report.Expiring)
	uc.done(ctx, nil)
	return contract.OK(report)
}
