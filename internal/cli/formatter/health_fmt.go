package formatter

import (
	"fmt"
	"strings"

	"github.com/modbuild/pulse/internal/metrics"
)

// FormatProjectHealth renders one project's health assessment.
func FormatProjectHealth(a metrics.HealthAssessment) string {
	var b strings.Builder
	title := a.ProjectName
	if a.ProjectNumber != "" {
		title = a.ProjectNumber + "  " + a.ProjectName
	}
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(title), HealthIndicator(a.State))
	fmt.Fprintf(&b, "  Delivery     %s", DeadlineStyled(a.DaysUntilDeadline))
	if a.DeliveryDate != nil {
		fmt.Fprintf(&b, " %s", Dim("("+a.DeliveryDate.Format("2006-01-02")+")"))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Overdue      %s\n", overdueCount(a.TotalOverdue))
	fmt.Fprintf(&b, "  %s\n", Dim(fmt.Sprintf("tasks %d · rfis %d · submittals %d",
		a.OverdueTasks, a.OverdueRFIs, a.OverdueSubmittals)))
	return RenderBox("Project Health", b.String()) + "\n"
}

// FormatPortfolio renders the portfolio summary followed by every project,
// most urgent first.
func FormatPortfolio(p metrics.PortfolioHealth) string {
	var b strings.Builder
	b.WriteString(Header("Portfolio Health"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s  %s\n",
		Bold(fmt.Sprintf("%d projects", p.CountsTotal)),
		StyleRed.Render(fmt.Sprintf("%d critical", p.CountsCritical)),
		StyleYellow.Render(fmt.Sprintf("%d at risk", p.CountsAtRisk)),
		StyleGreen.Render(fmt.Sprintf("%d on track", p.CountsOnTrack)),
	)
	if p.Message != "" {
		b.WriteString(Dim(p.Message))
		b.WriteString("\n")
	}
	if len(p.Projects) == 0 {
		return b.String()
	}
	b.WriteString("\n")

	rows := make([][]string, 0, len(p.Projects))
	for _, a := range p.Projects {
		rows = append(rows, []string{
			a.ProjectNumber,
			a.ProjectName,
			HealthIndicator(a.State),
			DeadlineStyled(a.DaysUntilDeadline),
			fmt.Sprintf("%d", a.OverdueTasks),
			fmt.Sprintf("%d", a.OverdueRFIs),
			fmt.Sprintf("%d", a.OverdueSubmittals),
		})
	}
	b.WriteString(Table{
		Headers:    []string{"NUMBER", "PROJECT", "HEALTH", "DELIVERY", "TASKS", "RFIS", "SUBMITTALS"},
		Rows:       rows,
		RightAlign: map[int]bool{4: true, 5: true, 6: true},
	}.Render())
	return b.String()
}

func overdueCount(n int) string {
	text := fmt.Sprintf("%d overdue", n)
	if n == 0 {
		return StyleGreen.Render(text)
	}
	if n >= metrics.CriticalOverdueCount {
		return StyleRed.Render(text)
	}
	return StyleYellow.Render(text)
}
