package service

import (
	"context"
	"fmt"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/repository"
	"golang.org/x/sync/errgroup"
)

type healthService struct {
	projects  repository.ProjectRepo
	workItems repository.WorkItemRepo
	observer  UseCaseObserver
}

func NewHealthService(
	projects repository.ProjectRepo,
	workItems repository.WorkItemRepo,
	observers ...UseCaseObserver,
) HealthService {
	return &healthService{
		projects:  projects,
		workItems: workItems,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *healthService) ProjectHealth(ctx context.Context, req contract.HealthRequest) contract.Result[metrics.HealthAssessment] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "project-health", map[string]any{"project_id": req.ProjectID})
	fallback := metrics.AssessProjectHealth(metrics.HealthInput{Now: now, Project: domain.Project{ID: req.ProjectID}})

	if err := req.Validate(); err != nil {
		err = invalid(err)
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		err = fmt.Errorf("loading project: %w", err)
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	var tasks, rfis, submittals []*domain.WorkItem
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tasks, err = s.workItems.ListByProject(gctx, project.ID, domain.KindTask)
		return err
	})
	g.Go(func() (err error) {
		rfis, err = s.workItems.ListByProject(gctx, project.ID, domain.KindRFI)
		return err
	})
	g.Go(func() (err error) {
		submittals, err = s.workItems.ListByProject(gctx, project.ID, domain.KindSubmittal)
		return err
	})
	if err := g.Wait(); err != nil {
		err = fmt.Errorf("loading work items: %w", err)
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	assessment := metrics.AssessProjectHealth(metrics.HealthInput{
		Now:        now,
		Project:    *project,
		Tasks:      values(tasks),
		RFIs:       values(rfis),
		Submittals: values(submittals),
	})
	uc.fields["state"] = string(assessment.State)
	uc.fields["overdue"] = assessment.TotalOverdue
	uc.done(ctx, nil)
	return contract.OK(assessment)
}

func (s *healthService) Portfolio(ctx context.Context, req contract.PortfolioRequest) contract.Result[metrics.PortfolioHealth] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "portfolio-health", map[string]any{
		"factory": req.FactoryCode,
		"pm_id":   req.PMID,
	})
	fallback := metrics.SummarizePortfolio(nil, now)

	projects, err := s.projects.List(ctx, repository.ProjectFilter{
		FactoryCode:   req.FactoryCode,
		PMID:          req.PMID,
		IncludeBackup: req.IncludeBackup,
		ExcludeClosed: !req.IncludeInactive,
	})
	if err != nil {
		err = fmt.Errorf("loading projects: %w", err)
		uc.done(ctx, err)
		return failWith(fallback, err)
	}

	byProject := map[string][]domain.WorkItem{}
	if len(projects) > 0 {
		ids := make([]string, len(projects))
		for i, p := range projects {
			ids[i] = p.ID
		}
		items, err := s.workItems.List(ctx, repository.WorkItemFilter{ProjectIDs: ids, ExcludeTerminal: true})
		if err != nil {
			err = fmt.Errorf("loading work items: %w", err)
			uc.done(ctx, err)
			return failWith(fallback, err)
		}
		for _, w := range items {
			byProject[w.ProjectID] = append(byProject[w.ProjectID], *w)
		}
	}

	assessments := make([]metrics.HealthAssessment, 0, len(projects))
	for _, p := range projects {
		tasks, rfis, submittals := metrics.SplitWorkItems(byProject[p.ID])
		assessments = append(assessments, metrics.AssessProjectHealth(metrics.HealthInput{
			Now:        now,
			Project:    *p,
			Tasks:      tasks,
			RFIs:       rfis,
			Submittals: submittals,
		}))
	}

	summary := metrics.SummarizePortfolio(assessments, now)
	uc.fields["projects"] = summary.CountsTotal
	uc.fields["critical"] = summary.CountsCritical
	uc.done(ctx, nil)
	return contract.OK(summary)
}
