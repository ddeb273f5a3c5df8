package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

type HealthInput struct {
	Now        time.Time
	Project    domain.Project
	Tasks      []domain.WorkItem
	RFIs       []domain.WorkItem
	Submittals []domain.WorkItem
}

type HealthAssessment struct {
	ProjectID         string             `json:"project_id"`
	ProjectNumber     string             `json:"project_number"`
	ProjectName       string             `json:"project_name"`
	DeliveryDate      *time.Time         `json:"delivery_date"`
	DaysUntilDeadline *int               `json:"days_until_deadline"`
	OverdueTasks      int                `json:"overdue_tasks"`
	OverdueRFIs       int                `json:"overdue_rfis"`
	OverdueSubmittals int                `json:"overdue_submittals"`
	TotalOverdue      int                `json:"total_overdue"`
	State             domain.HealthState `json:"state"`
}

// AssessProjectHealth counts overdue work per kind and classifies the
// project from the total plus delivery proximity.
func AssessProjectHealth(input HealthInput) HealthAssessment {
	result := HealthAssessment{
		ProjectID:         input.Project.ID,
		ProjectNumber:     input.Project.Number,
		ProjectName:       input.Project.Name,
		DeliveryDate:      input.Project.DeliveryDate,
		OverdueTasks:      countOverdue(input.Tasks, input.Now),
		OverdueRFIs:       countOverdue(input.RFIs, input.Now),
		OverdueSubmittals: countOverdue(input.Submittals, input.Now),
	}
	result.TotalOverdue = result.OverdueTasks + result.OverdueRFIs + result.OverdueSubmittals

	if input.Project.DeliveryDate != nil {
		days := DaysUntil(*input.Project.DeliveryDate, input.Now)
		result.DaysUntilDeadline = &days
	}

	result.State = Classify(result.TotalOverdue, result.DaysUntilDeadline)
	return result
}

// DaysUntil is ceil((deadline - now) / 1 day); negative once passed.
func DaysUntil(deadline, now time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}

func countOverdue(items []domain.WorkItem, now time.Time) int {
	n := 0
	for i := range items {
		if items[i].IsOverdue(now) {
			n++
		}
	}
	return n
}

// SplitWorkItems partitions a mixed work item list by kind.
func SplitWorkItems(items []domain.WorkItem) (tasks, rfis, submittals []domain.WorkItem) {
	for _, w := range items {
		switch w.Kind {
		case domain.KindTask:
			tasks = append(tasks, w)
		case domain.KindRFI:
			rfis = append(rfis, w)
		case domain.KindSubmittal:
			submittals = append(submittals, w)
		}
	}
	return tasks, rfis, submittals
}

type PortfolioHealth struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	CountsTotal    int                `json:"counts_total"`
	CountsOnTrack  int                `json:"counts_on_track"`
	CountsAtRisk   int                `json:"counts_at_risk"`
	CountsCritical int                `json:"counts_critical"`
	TotalOverdue   int                `json:"total_overdue"`
	Message        string             `json:"message"`
	Projects       []HealthAssessment `json:"projects"`
}

// SummarizePortfolio counts assessments per state and orders them most
// urgent first: state, then nearest delivery (none last), then name.
func SummarizePortfolio(assessments []HealthAssessment, now time.Time) PortfolioHealth {
	out := PortfolioHealth{
		GeneratedAt: now,
		CountsTotal: len(assessments),
		Projects:    make([]HealthAssessment, len(assessments)),
	}
	copy(out.Projects, assessments)

	for _, a := range assessments {
		out.TotalOverdue += a.TotalOverdue
		switch a.State {
		case domain.HealthCritical:
			out.CountsCritical++
		case domain.HealthAtRisk:
			out.CountsAtRisk++
		default:
			out.CountsOnTrack++
		}
	}

	sort.SliceStable(out.Projects, func(i, j int) bool {
		a, b := out.Projects[i], out.Projects[j]
		if pa, pb := HealthPriority(a.State), HealthPriority(b.State); pa != pb {
			return pa < pb
		}
		if (a.DaysUntilDeadline == nil) != (b.DaysUntilDeadline == nil) {
			return a.DaysUntilDeadline != nil
		}
		if a.DaysUntilDeadline != nil && *a.DaysUntilDeadline != *b.DaysUntilDeadline {
			return *a.DaysUntilDeadline < *b.DaysUntilDeadline
		}
		return a.ProjectName < b.ProjectName
	})

	switch {
	case out.CountsCritical > 0:
		out.Message = "Critical projects require attention"
	case out.CountsAtRisk > 0:
		out.Message = "Some projects at risk, monitor closely"
	default:
		out.Message = "All projects on track"
	}
	return out
}
