package repository

import (
	"context"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

// ProjectFilter narrows project listings. Zero values mean "no constraint".
type ProjectFilter struct {
	FactoryCode string
	Statuses    []domain.ProjectStatus
	// PMID keeps projects whose primary PM is PMID, and also those it backs
	// up when IncludeBackup is set.
	PMID          string
	IncludeBackup bool
	ExcludeClosed bool
	OrderBy       string
	Limit         int
}

// WorkItemFilter narrows task/RFI/submittal listings. Results embed a
// ProjectRef for the owning project.
type WorkItemFilter struct {
	ProjectIDs      []string
	Kinds           []domain.WorkItemKind
	AssigneeID      string
	ExcludeTerminal bool
	OrderBy         string
	Limit           int
}

type ModuleFilter struct {
	FactoryID     string
	Statuses      []domain.ModuleStatus
	CompletedFrom *time.Time
	CompletedTo   *time.Time
	OrderBy       string
	Limit         int
}

// QCFilter narrows inspection records. Results carry the inspected module's
// serial and building category.
type QCFilter struct {
	FactoryID  string
	StationID  string
	From       *time.Time
	To         *time.Time
	ReworkOnly bool
	Limit      int
}

type QuoteFilter struct {
	FactoryCode string
	Statuses    []domain.QuoteStatus
	OrderBy     string
	Limit       int
}

type FactoryRepo interface {
	Create(ctx context.Context, f *domain.Factory) error
	GetByID(ctx context.Context, id string) (*domain.Factory, error)
	GetByCode(ctx context.Context, code string) (*domain.Factory, error)
	List(ctx context.Context) ([]*domain.Factory, error)
}

type TeamMemberRepo interface {
	Create(ctx context.Context, m *domain.TeamMember) error
	GetByID(ctx context.Context, id string) (*domain.TeamMember, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.TeamMember, error)
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error)
}

type WorkItemRepo interface {
	Create(ctx context.Context, w *domain.WorkItem) error
	ListByProject(ctx context.Context, projectID string, kind domain.WorkItemKind) ([]*domain.WorkItem, error)
	List(ctx context.Context, f WorkItemFilter) ([]*domain.WorkItem, error)
}

type StationRepo interface {
	Create(ctx context.Context, s *domain.Station) error
	ListByFactory(ctx context.Context, factoryID string) ([]*domain.Station, error)
}

type WorkerRepo interface {
	Create(ctx context.Context, w *domain.Worker) error
	ListByFactory(ctx context.Context, factoryID string, activeOnly bool) ([]*domain.Worker, error)
}

type ShiftRepo interface {
	Create(ctx context.Context, s *domain.ShiftRecord) error
	// ListBetween returns shifts of the factory's workers clocked in within [from, to].
	ListBetween(ctx context.Context, factoryID string, from, to time.Time) ([]*domain.ShiftRecord, error)
}

type AssignmentRepo interface {
	Create(ctx context.Context, a *domain.StationAssignment) error
	// ListOverlapping returns assignments at the factory's stations that
	// intersect [from, to]. Open assignments overlap anything after their start.
	ListOverlapping(ctx context.Context, factoryID string, from, to time.Time) ([]*domain.StationAssignment, error)
}

type ModuleRepo interface {
	Create(ctx context.Context, m *domain.Module) error
	List(ctx context.Context, f ModuleFilter) ([]*domain.Module, error)
}

type TaktRepo interface {
	Create(ctx context.Context, e *domain.TaktEvent) error
	ListBetween(ctx context.Context, factoryID string, from, to time.Time) ([]*domain.TaktEvent, error)
}

type QCRepo interface {
	Create(ctx context.Context, r *domain.QCRecord) error
	List(ctx context.Context, f QCFilter) ([]*domain.QCRecord, error)
}

type CertificationRepo interface {
	Create(ctx context.Context, c *domain.CertificationRecord) error
	ListByFactory(ctx context.Context, factoryID string) ([]*domain.CertificationRecord, error)
}

type QuoteRepo interface {
	Create(ctx context.Context, q *domain.SalesQuote) error
	List(ctx context.Context, f QuoteFilter) ([]*domain.SalesQuote, error)
}
