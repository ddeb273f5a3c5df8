package cli

import (
	"context"
	"database/sql"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/modbuild/pulse/internal/repository"
	"github.com/modbuild/pulse/internal/service"
	"github.com/modbuild/pulse/internal/teatest"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func newTestDashboard(t *testing.T, app *App) (*teatest.Driver, *atomic.Int32) {
	t.Helper()
	f, err := app.Factories.Resolve(context.Background(), "NWBS")
	require.NoError(t, err)

	var loads atomic.Int32
	load := func(ctx context.Context) service.Snapshot {
		loads.Add(1)
		now := testNow
		return app.Snapshot.Snapshot(ctx, service.SnapshotRequest{Now: &now, FactoryID: f.ID, FactoryCode: f.Code, OEEDays: 7})
	}
	model := newDashboardModel(context.Background(), load, time.Minute)
	model.after = func(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }
	d := teatest.New(t, model, teatest.WithSize(120, 40))
	return d, &loads
}

func TestDashboard_LoadsOverview(t *testing.T) {
	app, _ := seededApp(t)
	d, loads := newTestDashboard(t, app)

	d.Start()

	view := plain(d.View())
	assert.Equal(t, int32(1), loads.Load())
	assert.Contains(t, view, "PULSE  NWBS  updated 10:15:00")
	assert.Contains(t, view, "Load board")
	assert.Contains(t, view, "4 projects")
	assert.Contains(t, view, "q quit")
}

func TestDashboard_TabsCycle(t *testing.T) {
	app, _ := seededApp(t)
	d, _ := newTestDashboard(t, app)
	d.Start()

	d.Press("tab")
	assert.Contains(t, plain(d.View()), "PORTFOLIO HEALTH")

	d.Press("tab")
	view := plain(d.View())
	assert.Contains(t, view, "LOAD BOARD")
	assert.Contains(t, view, "OVERALL EQUIPMENT EFFECTIVENESS")

	d.Press("shift+tab")
	d.Press("shift+tab")
	d.Press("shift+tab")
	assert.Contains(t, plain(d.View()), "SALES PIPELINE", "prev wraps to the last tab")
}

func TestDashboard_ManualRefresh(t *testing.T) {
	app, _ := seededApp(t)
	d, loads := newTestDashboard(t, app)
	d.Start()

	d.Press("r")

	assert.Equal(t, int32(2), loads.Load())
	assert.NotContains(t, plain(d.View()), "refreshing")
}

func TestDashboard_StaleTickIgnored(t *testing.T) {
	app, _ := seededApp(t)
	d, loads := newTestDashboard(t, app)
	d.Start()
	d.Press("r")

	d.Send(refreshTickMsg{gen: 1})
	assert.Equal(t, int32(2), loads.Load(), "a tick from an earlier load does not refetch")

	d.Send(refreshTickMsg{gen: 2})
	assert.Equal(t, int32(3), loads.Load())
}

func TestDashboard_ShowsFailedMetrics(t *testing.T) {
	_, database := seededApp(t)
	broken := repository.NewStore(&testutil.FailingQueries{DBTX: database, Table: "sales_quotes", Err: sql.ErrConnDone})
	d, _ := newTestDashboard(t, testApp(broken, testutil.NewTestUoW(database)))

	d.Start()

	assert.Contains(t, plain(d.View()), "! FETCH_FAILED")
}

func TestDashboard_Quit(t *testing.T) {
	app, _ := seededApp(t)
	d, _ := newTestDashboard(t, app)
	d.Start()

	d.Press("q")

	assert.True(t, d.Quitting)
}
