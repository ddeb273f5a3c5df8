package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/shopspring/decimal"
)

var testNumberCounter atomic.Int64

func nextNumber(prefix string) string {
	return fmt.Sprintf("%s-%04d", prefix, testNumberCounter.Add(1))
}

func NewTestFactory(code string) *domain.Factory {
	id := uuid.New().String()
	return &domain.Factory{
		ID:    id,
		Code:  code,
		Name:  code + " Plant",
		Plant: domain.DefaultPlantConfig(id),
	}
}

func NewTestMember(name string) *domain.TeamMember {
	return &domain.TeamMember{
		ID:     uuid.New().String(),
		Name:   name,
		Role:   "PM",
		Email:  name + "@example.com",
		Active: true,
	}
}

// Project options
type ProjectOption func(*domain.Project)

func WithDeliveryDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.DeliveryDate = &d
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithPrimaryPM(id string) ProjectOption {
	return func(p *domain.Project) {
		p.PrimaryPMID = &id
	}
}

func WithBackupPM(id string) ProjectOption {
	return func(p *domain.Project) {
		p.BackupPMID = &id
	}
}

func WithProjectFactory(code string) ProjectOption {
	return func(p *domain.Project) {
		p.FactoryCode = code
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:            uuid.New().String(),
		Number:        nextNumber("P"),
		Name:          name,
		Status:        domain.ProjectInProgress,
		ContractValue: decimal.NewFromInt(250000),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WorkItem options
type WorkItemOption func(*domain.WorkItem)

func WithDueDate(d time.Time) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.DueDate = &d
	}
}

func WithItemStatus(s string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.Status = s
	}
}

func WithAssignee(id string) WorkItemOption {
	return func(w *domain.WorkItem) {
		w.AssigneeID = &id
	}
}

// NewTestWorkItem builds an open task, RFI or submittal in its kind's
// initial status.
func NewTestWorkItem(kind domain.WorkItemKind, projectID string, opts ...WorkItemOption) *domain.WorkItem {
	now := time.Now().UTC().Truncate(time.Second)
	status := domain.TaskNotStarted
	switch kind {
	case domain.KindRFI:
		status = domain.RFIOpen
	case domain.KindSubmittal:
		status = domain.SubmittalPending
	}
	w := &domain.WorkItem{
		ID:        uuid.New().String(),
		Kind:      kind,
		ProjectID: projectID,
		Title:     nextNumber(string(kind)),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func NewTestStation(factoryID, name string, sequence int) *domain.Station {
	return &domain.Station{
		ID:        uuid.New().String(),
		FactoryID: factoryID,
		Code:      fmt.Sprintf("S%02d", sequence),
		Name:      name,
		Sequence:  sequence,
	}
}

func NewTestWorker(factoryID, name string) *domain.Worker {
	return &domain.Worker{
		ID:        uuid.New().String(),
		FactoryID: factoryID,
		Name:      name,
		Active:    true,
	}
}

func NewTestShift(workerID string, clockIn time.Time, hours float64) *domain.ShiftRecord {
	out := clockIn.Add(time.Duration(hours * float64(time.Hour)))
	return &domain.ShiftRecord{
		ID:         uuid.New().String(),
		WorkerID:   workerID,
		ClockIn:    clockIn,
		ClockOut:   &out,
		TotalHours: &hours,
	}
}

func NewTestAssignment(stationID string, start time.Time, minutes int, crew ...string) *domain.StationAssignment {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return &domain.StationAssignment{
		ID:        uuid.New().String(),
		StationID: stationID,
		CrewIDs:   crew,
		StartTime: start,
		EndTime:   &end,
	}
}

// Module options
type ModuleOption func(*domain.Module)

func WithModuleStatus(s domain.ModuleStatus) ModuleOption {
	return func(m *domain.Module) {
		m.Status = s
	}
}

func AtStation(stationID string) ModuleOption {
	return func(m *domain.Module) {
		m.CurrentStationID = &stationID
	}
}

func CompletedAt(t time.Time) ModuleOption {
	return func(m *domain.Module) {
		m.Status = domain.ModuleCompleted
		m.CompletedAt = &t
	}
}

func WithBuildingCategory(c string) ModuleOption {
	return func(m *domain.Module) {
		m.BuildingCategory = c
	}
}

func NewTestModule(factoryID string, sequence int, opts ...ModuleOption) *domain.Module {
	m := &domain.Module{
		ID:               uuid.New().String(),
		Serial:           nextNumber("MOD"),
		FactoryID:        factoryID,
		Status:           domain.ModuleInQueue,
		BuildingCategory: "standard",
		BuildSequence:    sequence,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func NewTestTaktEvent(moduleID, stationID string, completedAt time.Time, expected, actual float64) *domain.TaktEvent {
	return &domain.TaktEvent{
		ID:            uuid.New().String(),
		ModuleID:      moduleID,
		StationID:     stationID,
		ExpectedHours: expected,
		ActualHours:   &actual,
		CompletedAt:   completedAt,
	}
}

// NewTestInspection builds a QC record. A failed inspection requires rework;
// reworkDone, when non-nil, closes it.
func NewTestInspection(moduleID, stationID string, at time.Time, passed bool, reworkDone *time.Time) *domain.QCRecord {
	return &domain.QCRecord{
		ID:                uuid.New().String(),
		ModuleID:          moduleID,
		StationID:         stationID,
		InspectedAt:       at,
		Passed:            passed,
		ReworkRequired:    !passed,
		ReworkCompletedAt: reworkDone,
	}
}

func NewTestCertification(workerID, stationID string, level domain.CertificationLevel, certifiedAt time.Time) *domain.CertificationRecord {
	return &domain.CertificationRecord{
		ID:          uuid.New().String(),
		WorkerID:    workerID,
		StationID:   stationID,
		Level:       level,
		CertifiedAt: certifiedAt,
		Active:      true,
	}
}

// Quote options
type QuoteOption func(*domain.SalesQuote)

func WithOutlook(pct int) QuoteOption {
	return func(q *domain.SalesQuote) {
		q.OutlookPercentage = &pct
	}
}

func WithCloseDate(d time.Time) QuoteOption {
	return func(q *domain.SalesQuote) {
		q.ExpectedCloseDate = &d
	}
}

func WithTimeframe(s string) QuoteOption {
	return func(q *domain.SalesQuote) {
		q.ExpectedCloseTimeframe = s
	}
}

func WithQuoteFactory(code string) QuoteOption {
	return func(q *domain.SalesQuote) {
		q.FactoryCode = code
	}
}

func NewTestQuote(status domain.QuoteStatus, price int64, opts ...QuoteOption) *domain.SalesQuote {
	q := &domain.SalesQuote{
		ID:           uuid.New().String(),
		Number:       nextNumber("Q"),
		Version:      1,
		CustomerName: "Acme Builders",
		Status:       status,
		TotalPrice:   decimal.NewFromInt(price),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}
