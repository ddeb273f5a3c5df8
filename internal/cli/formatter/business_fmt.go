package formatter

import (
	"fmt"
	"strings"

	"github.com/modbuild/pulse/internal/metrics"
)

// FormatCapacity renders PM capacity scores, most available first.
func FormatCapacity(scores []metrics.CapacityScore) string {
	var b strings.Builder
	b.WriteString(Header("PM Capacity"))
	b.WriteString("\n")
	if len(scores) == 0 {
		b.WriteString(Dim("No active team members."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, []string{
			s.MemberName,
			RenderPercentBar(float64(s.Score), 10),
			CapacityBadge(s.Label),
			fmt.Sprintf("%d", s.ProjectCount),
			fmt.Sprintf("%d", s.TaskCount),
			overdueValue(s.OverdueCount),
		})
	}
	b.WriteString(Table{
		Headers:    []string{"MEMBER", "SCORE", "STATUS", "PROJECTS", "TASKS", "OVERDUE"},
		Rows:       rows,
		RightAlign: map[int]bool{3: true, 4: true, 5: true},
	}.Render())
	return b.String()
}

// FormatPipeline renders pipeline value, the cumulative close-date windows
// and the status breakdown.
func FormatPipeline(f metrics.PipelineForecast) string {
	var b strings.Builder
	b.WriteString(Header("Sales Pipeline"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-10s %s %s\n", "Pipeline", Bold(FormatMoney(f.PipelineValue)),
		Dim(fmt.Sprintf("(%d active of %d quotes)", f.ActiveCount, f.QuoteCount)))
	fmt.Fprintf(&b, "%-10s %s\n", "Weighted", Bold(FormatMoney(f.WeightedPipelineValue)))
	fmt.Fprintf(&b, "%-10s %s %s\n", "Win rate", Bold(fmt.Sprintf("%.1f%%", f.WinRate)),
		Dim(fmt.Sprintf("(%d won · %d lost)", f.WonCount, f.LostCount)))
	b.WriteString("\n")

	rows := make([][]string, 0, 3)
	for _, bucket := range []metrics.ForecastBucket{f.Next30, f.Next60, f.Next90} {
		rows = append(rows, []string{
			fmt.Sprintf("≤ %d days", bucket.Days),
			fmt.Sprintf("%d", bucket.Count),
			FormatMoney(bucket.Value),
			FormatMoney(bucket.WeightedValue),
		})
	}
	b.WriteString(Table{
		Headers:    []string{"WINDOW", "QUOTES", "VALUE", "WEIGHTED"},
		Rows:       rows,
		RightAlign: map[int]bool{1: true, 2: true, 3: true},
	}.Render())
	if f.Unbucketed > 0 || f.PMFlaggedCount > 0 {
		b.WriteString(Dim(fmt.Sprintf("%d active quote(s) without a close window · %d flagged for PM", f.Unbucketed, f.PMFlaggedCount)))
		b.WriteString("\n")
	}

	if len(f.ByStatus) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(f.ByStatus))
		for _, s := range f.ByStatus {
			rows = append(rows, []string{string(s.Status), fmt.Sprintf("%d", s.Count), FormatMoney(s.Value)})
		}
		b.WriteString(Table{
			Headers:    []string{"STATUS", "COUNT", "VALUE"},
			Rows:       rows,
			RightAlign: map[int]bool{1: true, 2: true},
		}.Render())
	}

	if len(f.RecentlyConverted) > 0 {
		b.WriteString("\n")
		b.WriteString(Bold("Recently converted"))
		b.WriteString("\n")
		for _, c := range f.RecentlyConverted {
			fmt.Fprintf(&b, "  %s %s  %s %s\n", c.Number, c.CustomerName, FormatMoney(c.TotalPrice), Dim(fmt.Sprintf("%dd ago", c.DaysAgo)))
		}
	}
	return b.String()
}

func overdueValue(n int) string {
	text := fmt.Sprintf("%d", n)
	if n > 0 {
		return StyleRed.Render(text)
	}
	return text
}
