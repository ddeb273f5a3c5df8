package formatter

import (
	"fmt"
	"strings"

	"github.com/modbuild/pulse/internal/metrics"
)

const barWidth = 20

// FormatOEE renders the three OEE factors and their product.
func FormatOEE(r metrics.OEEResult) string {
	var b strings.Builder
	b.WriteString(Header("Overall Equipment Effectiveness"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%-14s %s\n", "Availability", RenderProgress(r.Availability, barWidth))
	fmt.Fprintf(&b, "%-14s %s\n", "Performance", RenderProgress(r.Performance, barWidth))
	fmt.Fprintf(&b, "%-14s %s\n", "Quality", RenderProgress(r.Quality, barWidth))
	fmt.Fprintf(&b, "%-14s %s %s\n", Bold("OEE"), RenderProgress(r.OEE, barWidth), Bold(fmt.Sprintf("%.1f%%", r.OEEPct)))

	bd := r.Breakdown
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%d day(s) · %d worker(s) · %.1fh worked of %.1fh expected",
		bd.DaysInRange, bd.ShiftCount, bd.ActualHoursWorked, bd.ExpectedTotalHours)))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%d takt event(s) · %.1fh expected vs %.1fh actual cycle time",
		bd.TaktEventCount, bd.ExpectedCycleHours, bd.ActualCycleHours)))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("%d of %d inspection(s) passed", bd.PassedInspections, bd.TotalInspections)))
	b.WriteString("\n")
	return b.String()
}

// FormatDefectCycles lists hold-to-pass cycles. names maps station IDs to
// display names; unknown stations show a short ID.
func FormatDefectCycles(cycles []metrics.DefectCycle, names map[string]string) string {
	var b strings.Builder
	b.WriteString(Header("Defect Fix Cycles"))
	b.WriteString("\n")
	if len(cycles) == 0 {
		b.WriteString(Dim("No rework in range."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		state := StyleGreen.Render("fixed")
		if c.Ongoing {
			state = StyleYellow.Render("ongoing")
		}
		rows = append(rows, []string{
			c.ModuleSerial,
			stationName(names, c.StationID),
			c.BuildingCategory,
			c.HoldAt.Format("Jan 2 15:04"),
			FormatHours(c.DurationHours),
			FormatHours(c.WeightedHours),
			state,
		})
	}
	b.WriteString(Table{
		Headers:    []string{"MODULE", "STATION", "CATEGORY", "HELD", "DURATION", "WEIGHTED", "STATE"},
		Rows:       rows,
		RightAlign: map[int]bool{4: true, 5: true},
	}.Render())
	return b.String()
}

// FormatDefectStats renders the aggregate fix-cycle statistics.
func FormatDefectStats(s metrics.DefectFixStats, names map[string]string) string {
	var b strings.Builder
	b.WriteString(Header("Defect Fix Statistics"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s\n",
		Bold(fmt.Sprintf("%d defects", s.Total)),
		StyleGreen.Render(fmt.Sprintf("%d fixed", s.Completed)),
		StyleYellow.Render(fmt.Sprintf("%d ongoing", s.Ongoing)),
	)
	fmt.Fprintf(&b, "Average fix  %s  %s\n", FormatHours(s.AvgDurationHours), Dim("weighted "+FormatHours(s.AvgWeightedHours)))
	if s.LongestOngoing != nil {
		l := s.LongestOngoing
		fmt.Fprintf(&b, "Longest open %s  %s\n", StyleRed.Render(FormatHours(l.DurationHours)),
			Dim(l.ModuleSerial+" at "+stationName(names, l.StationID)))
	}

	if len(s.ByStation) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(s.ByStation))
		for _, st := range s.ByStation {
			rows = append(rows, []string{
				stationName(names, st.StationID),
				fmt.Sprintf("%d", st.Count),
				FormatHours(st.AvgDurationHours),
				fmt.Sprintf("%d", st.OngoingCount),
			})
		}
		b.WriteString(Table{
			Headers:    []string{"STATION", "COUNT", "AVG FIX", "ONGOING"},
			Rows:       rows,
			RightAlign: map[int]bool{1: true, 2: true, 3: true},
		}.Render())
	}
	if len(s.ByCategory) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(s.ByCategory))
		for _, c := range s.ByCategory {
			rows = append(rows, []string{c.Category, fmt.Sprintf("%d", c.Count), FormatHours(c.AvgWeightedHours)})
		}
		b.WriteString(Table{
			Headers:    []string{"CATEGORY", "COUNT", "AVG WEIGHTED"},
			Rows:       rows,
			RightAlign: map[int]bool{1: true, 2: true},
		}.Render())
	}
	return b.String()
}

// FormatLoadBoard renders today's pace and the per-station queues.
func FormatLoadBoard(s metrics.LoadBoardSnapshot) string {
	var b strings.Builder
	b.WriteString(Header("Load Board"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n", PaceIndicator(s.PaceStatus),
		Bold(fmt.Sprintf("%d of %d expected by now", s.ActualCompleted, s.ExpectedByNow)))
	b.WriteString(Dim(fmt.Sprintf("target %d/day · %.2fh into shift · pace %.0f%%",
		s.TargetThroughput, s.HoursElapsed, s.Pace*100)))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(s.Queues))
	for _, q := range s.Queues {
		hold := fmt.Sprintf("%d", q.OnHold)
		if q.OnHold > 0 {
			hold = StyleRed.Render(hold)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", q.Sequence),
			q.StationName,
			fmt.Sprintf("%d", q.InProgress),
			fmt.Sprintf("%d", q.Waiting),
			hold,
			fmt.Sprintf("%d", q.Total),
		})
	}
	b.WriteString(Table{
		Headers:    []string{"#", "STATION", "ACTIVE", "WAITING", "HOLD", "TOTAL"},
		Rows:       rows,
		RightAlign: map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true},
	}.Render())
	if s.Unassigned > 0 {
		b.WriteString(Dim(fmt.Sprintf("%d in-flight module(s) without a station", s.Unassigned)))
		b.WriteString("\n")
	}

	if len(s.NextUp) > 0 {
		b.WriteString("\n")
		b.WriteString(Bold("Next up"))
		b.WriteString("\n")
		for _, n := range s.NextUp {
			fmt.Fprintf(&b, "  %s %s\n", n.Serial, Dim("→ "+n.StationName))
		}
	}
	return b.String()
}

func stationName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return TruncID(id)
}
