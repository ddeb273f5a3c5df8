package service

import (
	"context"

	"github.com/modbuild/pulse/internal/contract"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/repository"
	"golang.org/x/sync/errgroup"
)

type capacityService struct {
	members   repository.TeamMemberRepo
	projects  repository.ProjectRepo
	workItems repository.WorkItemRepo
	weights   metrics.CapacityWeights
	observer  UseCaseObserver
}

func NewCapacityService(
	members repository.TeamMemberRepo,
	projects repository.ProjectRepo,
	workItems repository.WorkItemRepo,
	weights metrics.CapacityWeights,
	observers ...UseCaseObserver,
) CapacityService {
	return &capacityService{
		members:   members,
		projects:  projects,
		workItems: workItems,
		weights:   weights,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Capacity scores every active team member, most available first.
func (s *capacityService) Capacity(ctx context.Context, req contract.CapacityRequest) contract.Result[[]metrics.CapacityScore] {
	now := contract.ResolveNow(req.Now)
	uc := startUseCase(s.observer, "pm-capacity", map[string]any{"include_backup": req.IncludeBackupProjects})

	var (
		members  []*domain.TeamMember
		projects []*domain.Project
		items    []*domain.WorkItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = s.members.List(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.projects.List(gctx, repository.ProjectFilter{ExcludeClosed: true})
		return err
	})
	g.Go(func() (err error) {
		items, err = s.workItems.List(gctx, repository.WorkItemFilter{ExcludeTerminal: true})
		return err
	})
	if err := g.Wait(); err != nil {
		uc.done(ctx, err)
		return failWith([]metrics.CapacityScore{}, err)
	}

	projectValues := values(projects)
	itemValues := values(items)
	scores := make([]metrics.CapacityScore, 0, len(members))
	for _, m := range members {
		in := metrics.CapacityInputFor(*m, projectValues, itemValues, req.IncludeBackupProjects, now)
		scores = append(scores, metrics.ScoreCapacity(in, s.weights))
	}
	ranked := metrics.RankCapacity(scores)
	uc.fields["members"] = len(ranked)
	uc.done(ctx, nil)
	return contract.OK(ranked)
}
