// Package api serves every scorer as a read-only JSON endpoint. Responses
// are contract.Result envelopes: {"data": ..., "error": ...}.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/repository"
	"github.com/modbuild/pulse/internal/service"
	"github.com/modbuild/pulse/internal/telemetry"
)

// Services are the scorers the API exposes.
type Services struct {
	Factories  service.FactoryService
	Health     service.HealthService
	Production service.ProductionService
	Workforce  service.WorkforceService
	Capacity   service.CapacityService
	Pipeline   service.PipelineService
	Snapshot   service.SnapshotService
}

// Options carries request defaults taken from configuration.
type Options struct {
	DefaultFactory        string
	IncludeBackupProjects bool
	OEEDays               int
	// Now pins the clock; nil means wall-clock time.
	Now func() time.Time
}

// Server wires HTTP handlers for the metrics API.
type Server struct {
	svc  Services
	opts Options
}

func New(svc Services, opts Options) *Server {
	if opts.OEEDays <= 0 {
		opts.OEEDays = 7
	}
	return &Server{svc: svc, opts: opts}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/factories", s.handleFactories)
		r.Get("/projects/{id}/health", s.handleProjectHealth)
		r.Get("/portfolio/health", s.handlePortfolio)
		r.Get("/oee", s.handleOEE)
		r.Get("/defects", s.handleDefects)
		r.Get("/defects/stats", s.handleDefectStats)
		r.Get("/utilization", s.handleUtilization)
		r.Get("/cross-training", s.handleCrossTraining)
		r.Get("/load-board", s.handleLoadBoard)
		r.Get("/capacity", s.handleCapacity)
		r.Get("/pipeline", s.handlePipeline)
		r.Get("/snapshot", s.handleSnapshot)
	})
	return r
}

func (s *Server) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now().UTC()
}

// factoryCode returns the ?factory= value, or the configured default when
// the parameter is absent. An explicit empty value means all factories.
func (s *Server) factoryCode(r *http.Request) string {
	q := r.URL.Query()
	if q.Has("factory") {
		return q.Get("factory")
	}
	return s.opts.DefaultFactory
}

// resolveFactory writes an error envelope and returns nil when the request
// does not name a known factory.
func (s *Server) resolveFactory(w http.ResponseWriter, r *http.Request) *domain.Factory {
	f, err := s.svc.Factories.Resolve(r.Context(), s.factoryCode(r))
	switch {
	case err == nil:
		return f
	case errors.Is(err, service.ErrFactoryRequired):
		writeError(w, contract.ErrInvalidRequest, err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, contract.ErrNotFound, err)
	default:
		writeError(w, contract.ErrFetchFailed, err)
	}
	return nil
}

func (s *Server) handleFactories(w http.ResponseWriter, r *http.Request) {
	factories, err := s.svc.Factories.List(r.Context())
	if err != nil {
		writeError(w, contract.ErrFetchFailed, err)
		return
	}
	if factories == nil {
		factories = []*domain.Factory{}
	}
	writeResult(w, contract.OK(factories))
}

func (s *Server) handleProjectHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeResult(w, s.svc.Health.ProjectHealth(r.Context(), contract.HealthRequest{
		Now:       &now,
		ProjectID: chi.URLParam(r, "id"),
	}))
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := contract.NewPortfolioRequest()
	now := s.now()
	req.Now = &now
	req.FactoryCode = s.factoryCode(r)
	req.PMID = q.Get("pm")
	var err error
	if req.IncludeBackup, err = boolParam(r, "include_backup", false); err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	if req.IncludeInactive, err = boolParam(r, "include_inactive", false); err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	writeResult(w, s.svc.Health.Portfolio(r.Context(), req))
}

func (s *Server) handleOEE(w http.ResponseWriter, r *http.Request) {
	f := s.resolveFactory(w, r)
	if f == nil {
		return
	}
	days, err := intParam(r, "days", s.opts.OEEDays)
	if err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	req := contract.NewOEERequest(f.ID, s.now(), days)
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	if from != nil {
		req.From = *from
	}
	if to != nil {
		req.To = to.Add(24*time.Hour - time.Second)
	}
	writeResult(w, s.svc.Production.OEE(r.Context(), req))
}

func (s *Server) defectRequest(w http.ResponseWriter, r *http.Request) (contract.DefectRequest, bool) {
	f := s.resolveFactory(w, r)
	if f == nil {
		return contract.DefectRequest{}, false
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return contract.DefectRequest{}, false
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Second)
		to = &end
	}
	now := s.now()
	return contract.DefectRequest{
		Now:       &now,
		FactoryID: f.ID,
		StationID: r.URL.Query().Get("station"),
		From:      from,
		To:        to,
	}, true
}

func (s *Server) handleDefects(w http.ResponseWriter, r *http.Request) {
	if req, ok := s.defectRequest(w, r); ok {
		writeResult(w, s.svc.Production.DefectCycles(r.Context(), req))
	}
}

func (s *Server) handleDefectStats(w http.ResponseWriter, r *http.Request) {
	if req, ok := s.defectRequest(w, r); ok {
		writeResult(w, s.svc.Production.DefectStats(r.Context(), req))
	}
}

func (s *Server) handleUtilization(w http.ResponseWriter, r *http.Request) {
	f := s.resolveFactory(w, r)
	if f == nil {
		return
	}
	now := s.now()
	date := now
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(dateLayout, v, now.Location())
		if err != nil {
			writeError(w, contract.ErrInvalidRequest, fmt.Errorf("date: %w", err))
			return
		}
		date = d
	}
	writeResult(w, s.svc.Workforce.Utilization(r.Context(), contract.UtilizationRequest{
		Now:       &now,
		FactoryID: f.ID,
		Date:      date,
	}))
}

func (s *Server) handleCrossTraining(w http.ResponseWriter, r *http.Request) {
	f := s.resolveFactory(w, r)
	if f == nil {
		return
	}
	req := contract.NewCrossTrainingRequest(f.ID)
	days, err := intParam(r, "expiring_days", req.ExpiringWithinDays)
	if err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	now := s.now()
	req.Now = &now
	req.ExpiringWithinDays = days
	writeResult(w, s.svc.Workforce.CrossTraining(r.Context(), req))
}

func (s *Server) handleLoadBoard(w http.ResponseWriter, r *http.Request) {
	f := s.resolveFactory(w, r)
	if f == nil {
		return
	}
	now := s.now()
	writeResult(w, s.svc.Production.LoadBoard(r.Context(), contract.LoadBoardRequest{Now: &now, FactoryID: f.ID}))
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	includeBackup, err := boolParam(r, "include_backup", s.opts.IncludeBackupProjects)
	if err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	now := s.now()
	writeResult(w, s.svc.Capacity.Capacity(r.Context(), contract.CapacityRequest{
		Now:                   &now,
		IncludeBackupProjects: includeBackup,
	}))
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeResult(w, s.svc.Pipeline.Forecast(r.Context(), contract.PipelineRequest{
		Now:         &now,
		FactoryCode: s.factoryCode(r),
	}))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	f := s.resolveFactory(w, r)
	if f == nil {
		return
	}
	days, err := intParam(r, "days", s.opts.OEEDays)
	if err != nil {
		writeError(w, contract.ErrInvalidRequest, err)
		return
	}
	now := s.now()
	writeJSON(w, http.StatusOK, s.svc.Snapshot.Snapshot(r.Context(), service.SnapshotRequest{
		Now:                   &now,
		FactoryID:             f.ID,
		FactoryCode:           f.Code,
		OEEDays:               days,
		IncludeBackupProjects: s.opts.IncludeBackupProjects,
	}))
}

const dateLayout = "2006-01-02"

func dateRange(r *http.Request) (from, to *time.Time, err error) {
	parse := func(key string) (*time.Time, error) {
		v := r.URL.Query().Get(key)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return &t, nil
	}
	if from, err = parse("from"); err != nil {
		return nil, nil, err
	}
	if to, err = parse("to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func intParam(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

func boolParam(r *http.Request, key string, def bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return b, nil
}

// statusFor maps an envelope error to an HTTP status. Fetch failures still
// answer 200: the envelope carries a usable default metric.
func statusFor(e *contract.ResultError) int {
	if e == nil {
		return http.StatusOK
	}
	switch e.Code {
	case contract.ErrInvalidRequest:
		return http.StatusBadRequest
	case contract.ErrNotFound:
		return http.StatusNotFound
	}
	return http.StatusOK
}

func writeResult[T any](w http.ResponseWriter, res contract.Result[T]) {
	writeJSON(w, statusFor(res.Error), res)
}

func writeError(w http.ResponseWriter, code contract.ErrorCode, err error) {
	res := contract.Fail[any](nil, code, err)
	status := statusFor(res.Error)
	if code == contract.ErrFetchFailed {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
