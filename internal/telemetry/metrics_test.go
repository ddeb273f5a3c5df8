package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver_CountsOutcomes(t *testing.T) {
	obs := NewObserver()
	okBefore := testutil.ToFloat64(UseCaseRuns.WithLabelValues("oee", "ok"))
	errBefore := testutil.ToFloat64(UseCaseRuns.WithLabelValues("oee", "error"))
	failBefore := testutil.ToFloat64(FetchFailures.WithLabelValues("oee"))

	obs.ObserveUseCase(context.Background(), service.UseCaseEvent{
		Name:     "oee",
		Success:  true,
		Duration: 3 * time.Millisecond,
		Fields:   map[string]any{"oee_pct": 72.0, "factory_id": "f-1"},
	})
	obs.ObserveUseCase(context.Background(), service.UseCaseEvent{
		Name:   "oee",
		Err:    errors.New("store unreachable"),
		Code:   contract.ErrFetchFailed,
		Fields: map[string]any{"oee_pct": 0.0},
	})

	assert.Equal(t, okBefore+1, testutil.ToFloat64(UseCaseRuns.WithLabelValues("oee", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(UseCaseRuns.WithLabelValues("oee", "error")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(FetchFailures.WithLabelValues("oee")))
	assert.Equal(t, 72.0, testutil.ToFloat64(LastValue.WithLabelValues("oee", "oee_pct")),
		"failed runs do not overwrite the last good value")
}

func TestObserver_RequestErrorsAreNotFetchFailures(t *testing.T) {
	obs := NewObserver()
	errBefore := testutil.ToFloat64(UseCaseRuns.WithLabelValues("project-health", "error"))
	failBefore := testutil.ToFloat64(FetchFailures.WithLabelValues("project-health"))

	obs.ObserveUseCase(context.Background(), service.UseCaseEvent{
		Name: "project-health",
		Err:  errors.New("project id is required"),
		Code: contract.ErrInvalidRequest,
	})
	obs.ObserveUseCase(context.Background(), service.UseCaseEvent{
		Name: "project-health",
		Err:  errors.New("loading project: not found"),
		Code: contract.ErrNotFound,
	})

	assert.Equal(t, errBefore+2, testutil.ToFloat64(UseCaseRuns.WithLabelValues("project-health", "error")))
	assert.Equal(t, failBefore, testutil.ToFloat64(FetchFailures.WithLabelValues("project-health")))
}

func TestObserver_NumericFieldsOnly(t *testing.T) {
	obs := NewObserver()

	obs.ObserveUseCase(context.Background(), service.UseCaseEvent{
		Name:    "portfolio-health",
		Success: true,
		Fields:  map[string]any{"projects": 4, "critical": 1, "pm_id": "pm-1"},
	})

	assert.Equal(t, 4.0, testutil.ToFloat64(LastValue.WithLabelValues("portfolio-health", "projects")))
	assert.Equal(t, 1.0, testutil.ToFloat64(LastValue.WithLabelValues("portfolio-health", "critical")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	NewObserver().ObserveUseCase(context.Background(), service.UseCaseEvent{Name: "load-board", Success: true})

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `pulse_use_case_runs_total{outcome="ok",use_case="load-board"}`)
	assert.Contains(t, string(body), "pulse_use_case_duration_seconds_bucket")
}
