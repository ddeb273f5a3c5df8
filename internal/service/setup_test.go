package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/repository"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testNow is a Monday mid-morning, inside the default 06:00-14:30 shift.
var testNow = time.Date(2025, 3, 17, 10, 15, 0, 0, time.UTC)

var errStoreDown = errors.New("store unreachable")

func setupStore(t *testing.T) (*sql.DB, *repository.Store) {
	t.Helper()
	database := testutil.NewTestDB(t)
	return database, repository.NewStore(database)
}

// failingStore returns a Store whose queries touching table fail.
func failingStore(database *sql.DB, table string) *repository.Store {
	return repository.NewStore(&testutil.FailingQueries{DBTX: database, Table: table, Err: errStoreDown})
}

func day(offset int) time.Time {
	y, m, d := testNow.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingObserver) last(t *testing.T) UseCaseEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

type factoryFixture struct {
	factory  *domain.Factory
	stations []*domain.Station
	workers  []*domain.Worker
}

func seedFactory(t *testing.T, store *repository.Store, stationCount, workerCount int) factoryFixture {
	t.Helper()
	ctx := context.Background()
	fx := factoryFixture{factory: testutil.NewTestFactory("NWBS")}
	require.NoError(t, store.Factories.Create(ctx, fx.factory))
	for i := 0; i < stationCount; i++ {
		s := testutil.NewTestStation(fx.factory.ID, string(rune('A'+i))+" Station", i+1)
		require.NoError(t, store.Stations.Create(ctx, s))
		fx.stations = append(fx.stations, s)
	}
	for i := 0; i < workerCount; i++ {
		w := testutil.NewTestWorker(fx.factory.ID, string(rune('A'+i))+" Worker")
		require.NoError(t, store.Workers.Create(ctx, w))
		fx.workers = append(fx.workers, w)
	}
	return fx
}
