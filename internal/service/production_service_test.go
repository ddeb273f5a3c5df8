package service

import (
	"context"
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOEE_FromStoredRecords(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()
	fx := seedFactory(t, store, 2, 2)
	today := day(0)

	for _, w := range fx.workers {
		require.NoError(t, store.Shifts.Create(ctx, testutil.NewTestShift(w.ID, today.Add(6*time.Hour), 7.5)))
	}
	// Outside the one-day window.
	require.NoError(t, store.Shifts.Create(ctx, testutil.NewTestShift(fx.workers[0].ID, day(-3).Add(6*time.Hour), 7.5)))

	mod := testutil.NewTestModule(fx.factory.ID, 1)
	require.NoError(t, store.Modules.Create(ctx, mod))
	require.NoError(t, store.Takt.Create(ctx, testutil.NewTestTaktEvent(mod.ID, fx.stations[0].ID, today.Add(9*time.Hour), 4, 5)))
	require.NoError(t, store.Takt.Create(ctx, testutil.NewTestTaktEvent(mod.ID, fx.stations[1].ID, today.Add(10*time.Hour), 4, 5)))
	for i, passed := range []bool{true, true, true, false} {
		at := today.Add(time.Duration(7+i) * time.Hour)
		require.NoError(t, store.QC.Create(ctx, testutil.NewTestInspection(mod.ID, fx.stations[0].ID, at, passed, nil)))
	}

	obs := &recordingObserver{}
	svc := NewProductionService(store, domain.DefaultPlantConfig(""), obs)
	res := svc.OEE(ctx, contract.NewOEERequest(fx.factory.ID, testNow, 1))

	require.NoError(t, res.Err())
	assert.Equal(t, 1, res.Data.Breakdown.DaysInRange)
	assert.Equal(t, 2, res.Data.Breakdown.ShiftCount)
	assert.InDelta(t, 15.0, res.Data.Breakdown.ExpectedTotalHours, 1e-9)
	assert.InDelta(t, 15.0, res.Data.Breakdown.ActualHoursWorked, 1e-9)
	assert.InDelta(t, 1.0, res.Data.Availability, 1e-9)
	assert.InDelta(t, 0.8, res.Data.Performance, 1e-9)
	assert.InDelta(t, 0.75, res.Data.Quality, 1e-9)
	assert.InDelta(t, 0.6, res.Data.OEE, 1e-9)
	assert.Equal(t, 60.0, res.Data.OEEPct)
	assert.True(t, obs.last(t).Success)
}

func TestOEE_UnknownFactoryUsesDefaultPlant(t *testing.T) {
	_, store := setupStore(t)
	plant := domain.DefaultPlantConfig("")
	plant.ShiftEnd = "16:00"

	svc := NewProductionService(store, plant)
	res := svc.OEE(context.Background(), contract.NewOEERequest("no-such-factory", testNow, 7))

	require.NoError(t, res.Err())
	assert.InDelta(t, 9.0, res.Data.Breakdown.ExpectedHoursPerDay, 1e-9)
	assert.Equal(t, 7, res.Data.Breakdown.DaysInRange)
	assert.Zero(t, res.Data.Availability)
	assert.Zero(t, res.Data.Performance)
	assert.Equal(t, 1.0, res.Data.Quality)
}

func TestOEE_InvalidRequest(t *testing.T) {
	_, store := setupStore(t)
	svc := NewProductionService(store, domain.DefaultPlantConfig(""))

	res := svc.OEE(context.Background(), contract.OEERequest{From: testNow, To: testNow.Add(-time.Hour), FactoryID: "f"})
	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrInvalidRequest, res.Error.Code)

	res = svc.OEE(context.Background(), contract.NewOEERequest("", testNow, 7))
	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrInvalidRequest, res.Error.Code)
}

func TestOEE_FetchFailureYieldsDefault(t *testing.T) {
	database, store := setupStore(t)
	fx := seedFactory(t, store, 1, 1)
	require.NoError(t, store.Shifts.Create(context.Background(),
		testutil.NewTestShift(fx.workers[0].ID, day(0).Add(6*time.Hour), 8)))

	obs := &recordingObserver{}
	svc := NewProductionService(failingStore(database, "takt_events"), domain.DefaultPlantConfig(""), obs)
	res := svc.OEE(context.Background(), contract.NewOEERequest(fx.factory.ID, testNow, 1))

	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrFetchFailed, res.Error.Code)
	assert.Zero(t, res.Data.OEE)
	assert.Zero(t, res.Data.Breakdown.ActualHoursWorked, "partial inputs are discarded")
	assert.InDelta(t, 7.5, res.Data.Breakdown.ExpectedHoursPerDay, 1e-9)
	assert.ErrorIs(t, obs.last(t).Err, errStoreDown)
}

// defectFixture stores one closed and one ongoing rework record, plus a
// passing inspection that is not a defect.
func defectFixture(t *testing.T) (*factoryFixture, *domain.Module, *domain.Module, ProductionService) {
	t.Helper()
	_, store := setupStore(t)
	ctx := context.Background()
	fx := seedFactory(t, store, 2, 0)

	standard := testutil.NewTestModule(fx.factory.ID, 1)
	custom := testutil.NewTestModule(fx.factory.ID, 2, testutil.WithBuildingCategory(domain.BuildingCategoryCustom))
	require.NoError(t, store.Modules.Create(ctx, standard))
	require.NoError(t, store.Modules.Create(ctx, custom))

	fixed := day(-1).Add(14 * time.Hour)
	require.NoError(t, store.QC.Create(ctx,
		testutil.NewTestInspection(standard.ID, fx.stations[0].ID, day(-1).Add(8*time.Hour), false, &fixed)))
	require.NoError(t, store.QC.Create(ctx,
		testutil.NewTestInspection(custom.ID, fx.stations[1].ID, day(0).Add(8*time.Hour), false, nil)))
	require.NoError(t, store.QC.Create(ctx,
		testutil.NewTestInspection(standard.ID, fx.stations[0].ID, day(0).Add(9*time.Hour), true, nil)))

	return &fx, standard, custom, NewProductionService(store, domain.DefaultPlantConfig(""))
}

func TestDefectStats_FromStoredRecords(t *testing.T) {
	fx, _, custom, svc := defectFixture(t)

	res := svc.DefectStats(context.Background(), contract.DefectRequest{Now: &testNow, FactoryID: fx.factory.ID})

	require.NoError(t, res.Err())
	stats := res.Data
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Ongoing)
	assert.Equal(t, 6.0, stats.AvgDurationHours)
	assert.Len(t, stats.ByStation, 2)
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, domain.BuildingCategoryCustom, stats.ByCategory[0].Category)
	assert.Equal(t, 0.0, stats.ByCategory[0].AvgWeightedHours, "the custom defect is still open")
	assert.Equal(t, 6.0, stats.ByCategory[1].AvgWeightedHours)
	require.NotNil(t, stats.LongestOngoing)
	assert.Equal(t, custom.ID, stats.LongestOngoing.ModuleID)
	assert.Equal(t, 2.3, stats.LongestOngoing.DurationHours)
}

func TestDefectCycles_StationFilter(t *testing.T) {
	fx, standard, _, svc := defectFixture(t)

	res := svc.DefectCycles(context.Background(), contract.DefectRequest{
		Now:       &testNow,
		FactoryID: fx.factory.ID,
		StationID: fx.stations[0].ID,
	})

	require.NoError(t, res.Err())
	require.Len(t, res.Data, 1)
	c := res.Data[0]
	assert.Equal(t, standard.Serial, c.ModuleSerial)
	assert.False(t, c.Ongoing)
	assert.Equal(t, 6.0, c.DurationHours)
	assert.Equal(t, 1.0, c.CategoryMultiplier)
}

func TestDefectCycles_EmptyIsNotNil(t *testing.T) {
	_, store := setupStore(t)
	fx := seedFactory(t, store, 1, 0)
	svc := NewProductionService(store, domain.DefaultPlantConfig(""))

	res := svc.DefectCycles(context.Background(), contract.DefectRequest{Now: &testNow, FactoryID: fx.factory.ID})

	require.NoError(t, res.Err())
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestDefects_RequireFactory(t *testing.T) {
	_, store := setupStore(t)
	svc := NewProductionService(store, domain.DefaultPlantConfig(""))

	res := svc.DefectStats(context.Background(), contract.DefectRequest{Now: &testNow})
	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrInvalidRequest, res.Error.Code)
	assert.Zero(t, res.Data.Total)
}

func TestLoadBoard_FromStoredModules(t *testing.T) {
	_, store := setupStore(t)
	ctx := context.Background()
	fx := seedFactory(t, store, 3, 0)
	st := fx.stations

	queued := testutil.NewTestModule(fx.factory.ID, 2, testutil.AtStation(st[0].ID))
	building := testutil.NewTestModule(fx.factory.ID, 1,
		testutil.AtStation(st[0].ID), testutil.WithModuleStatus(domain.ModuleInProgress))
	held := testutil.NewTestModule(fx.factory.ID, 3,
		testutil.AtStation(st[1].ID), testutil.WithModuleStatus(domain.ModuleQCHold))
	loose := testutil.NewTestModule(fx.factory.ID, 4)
	doneToday := testutil.NewTestModule(fx.factory.ID, 0, testutil.CompletedAt(day(0).Add(7*time.Hour)))
	shippedToday := testutil.NewTestModule(fx.factory.ID, 0,
		testutil.CompletedAt(day(0).Add(8*time.Hour)), testutil.WithModuleStatus(domain.ModuleShipped))
	doneYesterday := testutil.NewTestModule(fx.factory.ID, 0, testutil.CompletedAt(day(-1).Add(12*time.Hour)))
	for _, m := range []*domain.Module{queued, building, held, loose, doneToday, shippedToday, doneYesterday} {
		require.NoError(t, store.Modules.Create(ctx, m))
	}

	obs := &recordingObserver{}
	svc := NewProductionService(store, domain.DefaultPlantConfig(""), obs)
	res := svc.LoadBoard(ctx, contract.LoadBoardRequest{Now: &testNow, FactoryID: fx.factory.ID})

	require.NoError(t, res.Err())
	board := res.Data
	assert.Equal(t, 2, board.TargetThroughput)
	assert.InDelta(t, 4.25, board.HoursElapsed, 1e-9)
	assert.Equal(t, 1, board.ExpectedByNow)
	assert.Equal(t, 2, board.ActualCompleted)
	assert.Equal(t, domain.PaceOnTrack, board.PaceStatus)

	require.Len(t, board.Queues, 3)
	assert.Equal(t, 2, board.Queues[0].Total)
	assert.Equal(t, 1, board.Queues[0].InProgress)
	assert.Equal(t, 1, board.Queues[0].Waiting)
	assert.Equal(t, 1, board.Queues[1].OnHold)
	assert.Zero(t, board.Queues[2].Total)
	assert.Equal(t, 1, board.Unassigned)

	require.Len(t, board.NextUp, 1)
	assert.Equal(t, queued.ID, board.NextUp[0].ModuleID)
	assert.Equal(t, "on_track", obs.last(t).Fields["pace"])
}

func TestLoadBoard_FetchFailure(t *testing.T) {
	database, store := setupStore(t)
	fx := seedFactory(t, store, 2, 0)

	svc := NewProductionService(failingStore(database, "modules"), domain.DefaultPlantConfig(""))
	res := svc.LoadBoard(context.Background(), contract.LoadBoardRequest{Now: &testNow, FactoryID: fx.factory.ID})

	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrFetchFailed, res.Error.Code)
	assert.Empty(t, res.Data.Queues)
	assert.Zero(t, res.Data.ActualCompleted)
	assert.Equal(t, 2, res.Data.TargetThroughput)
}

func TestLoadBoard_RequiresFactory(t *testing.T) {
	_, store := setupStore(t)
	svc := NewProductionService(store, domain.DefaultPlantConfig(""))

	res := svc.LoadBoard(context.Background(), contract.LoadBoardRequest{Now: &testNow})

	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrInvalidRequest, res.Error.Code)
}
