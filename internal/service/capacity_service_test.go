package service

import (
	"context"
	"testing"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/repository"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capacityFixture struct {
	busy, idle *domain.TeamMember
}

// seedCapacity gives busy three active projects, one closed project, one
// backup project and ten open tasks of which two are overdue.
func seedCapacity(t *testing.T, store *repository.Store) capacityFixture {
	t.Helper()
	ctx := context.Background()
	fx := capacityFixture{busy: testutil.NewTestMember("Morgan"), idle: testutil.NewTestMember("Sam")}
	gone := testutil.NewTestMember("Alex")
	gone.Active = false
	for _, m := range []*domain.TeamMember{fx.busy, fx.idle, gone} {
		require.NoError(t, store.Members.Create(ctx, m))
	}

	var active []*domain.Project
	for _, name := range []string{"Aspen", "Birch", "Cedar"} {
		p := testutil.NewTestProject(name, testutil.WithPrimaryPM(fx.busy.ID))
		require.NoError(t, store.Projects.Create(ctx, p))
		active = append(active, p)
	}
	closed := testutil.NewTestProject("Dogwood", testutil.WithPrimaryPM(fx.busy.ID),
		testutil.WithProjectStatus(domain.ProjectCompleted))
	backup := testutil.NewTestProject("Elm", testutil.WithBackupPM(fx.busy.ID), testutil.WithPrimaryPM(fx.idle.ID))
	require.NoError(t, store.Projects.Create(ctx, closed))
	require.NoError(t, store.Projects.Create(ctx, backup))

	for i := 0; i < 10; i++ {
		opts := []testutil.WorkItemOption{testutil.WithAssignee(fx.busy.ID)}
		if i < 2 {
			opts = append(opts, testutil.WithDueDate(day(-3)))
		}
		require.NoError(t, store.WorkItems.Create(ctx,
			testutil.NewTestWorkItem(domain.KindTask, active[i%3].ID, opts...)))
	}
	require.NoError(t, store.WorkItems.Create(ctx, testutil.NewTestWorkItem(domain.KindTask, active[0].ID,
		testutil.WithAssignee(fx.busy.ID), testutil.WithItemStatus(domain.TaskCompleted), testutil.WithDueDate(day(-9)))))
	require.NoError(t, store.WorkItems.Create(ctx, testutil.NewTestWorkItem(domain.KindRFI, closed.ID,
		testutil.WithDueDate(day(-9)))))
	return fx
}

func TestCapacity_OverloadedMember(t *testing.T) {
	_, store := setupStore(t)
	fx := seedCapacity(t, store)

	obs := &recordingObserver{}
	svc := NewCapacityService(store.Members, store.Projects, store.WorkItems, metrics.DefaultCapacityWeights(), obs)
	res := svc.Capacity(context.Background(), contract.CapacityRequest{Now: &testNow})

	require.NoError(t, res.Err())
	require.Len(t, res.Data, 2, "inactive members are not scored")

	assert.Equal(t, fx.idle.ID, res.Data[0].MemberID)
	assert.Equal(t, 85, res.Data[0].Score)
	assert.Equal(t, domain.CapacityAvailable, res.Data[0].Label)

	busy := res.Data[1]
	assert.Equal(t, fx.busy.ID, busy.MemberID)
	assert.Equal(t, 3, busy.ProjectCount)
	assert.Equal(t, 10, busy.TaskCount)
	assert.Equal(t, 2, busy.OverdueCount)
	assert.Equal(t, 15, busy.Score)
	assert.Equal(t, domain.CapacityOverloaded, busy.Label)
	assert.Equal(t, 2, obs.last(t).Fields["members"])
}

func TestCapacity_BackupProjectsOnRequest(t *testing.T) {
	_, store := setupStore(t)
	fx := seedCapacity(t, store)
	svc := NewCapacityService(store.Members, store.Projects, store.WorkItems, metrics.DefaultCapacityWeights())

	res := svc.Capacity(context.Background(), contract.CapacityRequest{Now: &testNow, IncludeBackupProjects: true})

	require.NoError(t, res.Err())
	var busy metrics.CapacityScore
	for _, s := range res.Data {
		if s.MemberID == fx.busy.ID {
			busy = s
		}
	}
	assert.Equal(t, 4, busy.ProjectCount)
	assert.Equal(t, 0, busy.Score, "score is clamped at zero")
}

func TestCapacity_CustomWeights(t *testing.T) {
	_, store := setupStore(t)
	fx := seedCapacity(t, store)
	weights := metrics.DefaultCapacityWeights()
	weights.Task = 1
	weights.BusyAt = 10
	svc := NewCapacityService(store.Members, store.Projects, store.WorkItems, weights)

	res := svc.Capacity(context.Background(), contract.CapacityRequest{Now: &testNow})

	require.NoError(t, res.Err())
	require.Len(t, res.Data, 2)
	assert.Equal(t, fx.busy.ID, res.Data[1].MemberID)
	assert.Equal(t, 25, res.Data[1].Score)
	assert.Equal(t, domain.CapacityBusy, res.Data[1].Label)
}

func TestCapacity_FetchFailure(t *testing.T) {
	database, store := setupStore(t)
	seedCapacity(t, store)
	broken := failingStore(database, "team_members")

	svc := NewCapacityService(broken.Members, broken.Projects, broken.WorkItems, metrics.DefaultCapacityWeights())
	res := svc.Capacity(context.Background(), contract.CapacityRequest{Now: &testNow})

	require.NotNil(t, res.Error)
	assert.Equal(t, contract.ErrFetchFailed, res.Error.Code)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}
