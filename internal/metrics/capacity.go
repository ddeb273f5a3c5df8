package metrics

import (
	"sort"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

// CapacityWeights holds the linear penalty coefficients of the capacity
// heuristic. They are hand-tuned, not calibrated; override them through
// configuration when recalibrating.
type CapacityWeights struct {
	Project     float64 `json:"project"`
	Task        float64 `json:"task"`
	Overdue     float64 `json:"overdue"`
	AvailableAt float64 `json:"available_at"`
	BusyAt      float64 `json:"busy_at"`
}

func DefaultCapacityWeights() CapacityWeights {
	return CapacityWeights{
		Project:     15,
		Task:        2,
		Overdue:     10,
		AvailableAt: 60,
		BusyAt:      30,
	}
}

type CapacityInput struct {
	Member       domain.TeamMember
	ProjectCount int
	TaskCount    int
	OverdueCount int
}

type CapacityScore struct {
	MemberID     string               `json:"member_id"`
	MemberName   string               `json:"member_name"`
	ProjectCount int                  `json:"project_count"`
	TaskCount    int                  `json:"task_count"`
	OverdueCount int                  `json:"overdue_count"`
	Score        int                  `json:"score"`
	Label        domain.CapacityLabel `json:"label"`
}

// ScoreCapacity starts every member at 100 and subtracts a fixed penalty per
// active project, open task and overdue item, clamped to [0,100].
func ScoreCapacity(input CapacityInput, w CapacityWeights) CapacityScore {
	raw := 100 -
		float64(input.ProjectCount)*w.Project -
		float64(input.TaskCount)*w.Task -
		float64(input.OverdueCount)*w.Overdue
	score := int(clamp(raw, 0, 100))

	return CapacityScore{
		MemberID:     input.Member.ID,
		MemberName:   input.Member.Name,
		ProjectCount: input.ProjectCount,
		TaskCount:    input.TaskCount,
		OverdueCount: input.OverdueCount,
		Score:        score,
		Label:        CapacityLabelFor(score, w),
	}
}

func CapacityLabelFor(score int, w CapacityWeights) domain.CapacityLabel {
	switch {
	case float64(score) >= w.AvailableAt:
		return domain.CapacityAvailable
	case float64(score) >= w.BusyAt:
		return domain.CapacityBusy
	default:
		return domain.CapacityOverloaded
	}
}

// CapacityInputFor derives one member's counts from the team-wide record
// sets. Closed projects are ignored; backup assignments count only when
// includeBackup is set. Open tasks are the member's non-terminal tasks;
// overdue counts every overdue task, RFI and submittal on their projects.
func CapacityInputFor(
	member domain.TeamMember,
	projects []domain.Project,
	items []domain.WorkItem,
	includeBackup bool,
	now time.Time,
) CapacityInput {
	in := CapacityInput{Member: member}
	mine := map[string]bool{}
	for i := range projects {
		p := &projects[i]
		if p.IsClosed() || !p.ManagedBy(member.ID, includeBackup) {
			continue
		}
		mine[p.ID] = true
		in.ProjectCount++
	}

	for i := range items {
		w := &items[i]
		if w.Kind == domain.KindTask && w.AssigneeID != nil && *w.AssigneeID == member.ID && !w.IsTerminal() {
			in.TaskCount++
		}
		if mine[w.ProjectID] && w.IsOverdue(now) {
			in.OverdueCount++
		}
	}
	return in
}

// RankCapacity orders scores most available first, then by name.
func RankCapacity(scores []CapacityScore) []CapacityScore {
	out := make([]CapacityScore, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MemberName < out[j].MemberName
	})
	return out
}
