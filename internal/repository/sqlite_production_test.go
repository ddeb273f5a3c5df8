package repository

import (
	"context"
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleRepo_ListFilters(t *testing.T) {
	fx := newPlantFixture(t)
	ctx := context.Background()

	now := time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC)
	queued := testutil.NewTestModule(fx.factory.ID, 3, testutil.AtStation(fx.stations[0].ID))
	building := testutil.NewTestModule(fx.factory.ID, 1, testutil.WithModuleStatus(domain.ModuleInProgress),
		testutil.AtStation(fx.stations[1].ID))
	doneToday := testutil.NewTestModule(fx.factory.ID, 0, testutil.CompletedAt(now.Add(-time.Hour)))
	doneYesterday := testutil.NewTestModule(fx.factory.ID, 0, testutil.CompletedAt(now.AddDate(0, 0, -1)))
	for _, m := range []*domain.Module{queued, building, doneToday, doneYesterday} {
		require.NoError(t, fx.store.Modules.Create(ctx, m))
	}

	inFlight, err := fx.store.Modules.List(ctx, ModuleFilter{
		FactoryID: fx.factory.ID,
		Statuses:  domain.InFlightModuleStatuses,
	})
	require.NoError(t, err)
	require.Len(t, inFlight, 2)
	assert.Equal(t, building.ID, inFlight[0].ID, "ordered by build sequence")
	require.NotNil(t, inFlight[0].CurrentStationID)
	assert.Equal(t, fx.stations[1].ID, *inFlight[0].CurrentStationID)

	midnight := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	today, err := fx.store.Modules.List(ctx, ModuleFilter{
		FactoryID:     fx.factory.ID,
		Statuses:      []domain.ModuleStatus{domain.ModuleCompleted},
		CompletedFrom: &midnight,
		CompletedTo:   &now,
	})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, doneToday.ID, today[0].ID)
	assert.Empty(t, today[0].ProjectID)
}

func TestTaktRepo_ListBetween(t *testing.T) {
	fx := newPlantFixture(t)
	ctx := context.Background()

	m := testutil.NewTestModule(fx.factory.ID, 1)
	require.NoError(t, fx.store.Modules.Create(ctx, m))

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	in := testutil.NewTestTaktEvent(m.ID, fx.stations[0].ID, from.Add(10*time.Hour), 5, 4)
	out := testutil.NewTestTaktEvent(m.ID, fx.stations[0].ID, from.AddDate(0, 0, -2), 5, 6)
	noActual := &domain.TaktEvent{ID: "na", StationID: fx.stations[1].ID, ExpectedHours: 3, CompletedAt: from.Add(time.Hour)}
	for _, e := range []*domain.TaktEvent{in, out, noActual} {
		require.NoError(t, fx.store.Takt.Create(ctx, e))
	}

	got, err := fx.store.Takt.ListBetween(ctx, fx.factory.ID, from, from.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "na", got[0].ID)
	assert.Nil(t, got[0].ActualHours)
	assert.Empty(t, got[0].ModuleID)
	require.NotNil(t, got[1].ActualHours)
	assert.InDelta(t, 4.0, *got[1].ActualHours, 1e-9)
}

func TestQCRepo_ListJoinsModuleAndFilters(t *testing.T) {
	fx := newPlantFixture(t)
	ctx := context.Background()

	custom := testutil.NewTestModule(fx.factory.ID, 1, testutil.WithBuildingCategory(domain.BuildingCategoryCustom))
	require.NoError(t, fx.store.Modules.Create(ctx, custom))

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	fixed := at.Add(3 * time.Hour)
	failedFixed := testutil.NewTestInspection(custom.ID, fx.stations[0].ID, at, false, &fixed)
	failedOpen := testutil.NewTestInspection(custom.ID, fx.stations[1].ID, at.Add(time.Hour), false, nil)
	passed := testutil.NewTestInspection(custom.ID, fx.stations[0].ID, at.Add(2*time.Hour), true, nil)
	for _, r := range []*domain.QCRecord{failedFixed, failedOpen, passed} {
		require.NoError(t, fx.store.QC.Create(ctx, r))
	}

	all, err := fx.store.QC.List(ctx, QCFilter{FactoryID: fx.factory.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, custom.Serial, all[0].ModuleSerial)
	assert.Equal(t, domain.BuildingCategoryCustom, all[0].BuildingCategory)
	require.NotNil(t, all[0].ReworkCompletedAt)
	assert.True(t, fixed.Equal(*all[0].ReworkCompletedAt))

	rework, err := fx.store.QC.List(ctx, QCFilter{FactoryID: fx.factory.ID, ReworkOnly: true})
	require.NoError(t, err)
	assert.Len(t, rework, 2)

	station, err := fx.store.QC.List(ctx, QCFilter{StationID: fx.stations[0].ID})
	require.NoError(t, err)
	assert.Len(t, station, 2)

	from := at.Add(30 * time.Minute)
	windowed, err := fx.store.QC.List(ctx, QCFilter{From: &from, Limit: 1})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	assert.Equal(t, failedOpen.ID, windowed[0].ID)
}
