package formatter

import (
	"fmt"
	"strings"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/metrics"
	"github.com/modbuild/pulse/internal/service"
)

// FormatUtilization renders the worker x station minutes grid for one day.
func FormatUtilization(m metrics.UtilizationMatrix) string {
	var b strings.Builder
	b.WriteString(Header("Crew Utilization " + m.Date.Format("2006-01-02")))
	b.WriteString("\n")
	if len(m.Workers) == 0 {
		b.WriteString(Dim("No active workers."))
		b.WriteString("\n")
		return b.String()
	}

	headers := []string{"WORKER", "SHIFT"}
	right := map[int]bool{}
	for i, st := range m.Stations {
		headers = append(headers, st.Code)
		right[i+2] = true
	}
	headers = append(headers, "TOTAL")
	right[len(headers)-1] = true

	rows := make([][]string, 0, len(m.Workers)+1)
	for _, w := range m.Workers {
		row := m.Rows[w.ID]
		cells := []string{w.Name, shiftSpan(row.Shift)}
		for _, st := range m.Stations {
			cells = append(cells, minutesCell(m.Cell(w.ID, st.ID)))
		}
		cells = append(cells, Bold(FormatMinutes(row.TotalMinutes)))
		rows = append(rows, cells)
	}

	totals := []string{Bold("Station total"), ""}
	for _, st := range m.Stations {
		totals = append(totals, Bold(FormatMinutes(m.StationTotals[st.ID])))
	}
	totals = append(totals, "")
	rows = append(rows, totals)

	b.WriteString(Table{Headers: headers, Rows: rows, RightAlign: right}.Render())
	return b.String()
}

func minutesCell(c metrics.UtilizationCell) string {
	if c.Status == domain.UtilIdle {
		return Dim("·")
	}
	return StyleGreen.Render(FormatMinutes(c.Minutes))
}

func shiftSpan(s *metrics.WorkerShift) string {
	if s == nil {
		return Dim("off")
	}
	if s.ClockOut == nil {
		return s.ClockIn.Format("15:04") + StyleGreen.Render("–now")
	}
	return fmt.Sprintf("%s–%s", s.ClockIn.Format("15:04"), s.ClockOut.Format("15:04"))
}

// FormatCrossTraining renders the certification grid, per-station flex and
// certifications nearing expiry.
func FormatCrossTraining(r service.CrossTrainingReport) string {
	m := r.Matrix
	var b strings.Builder
	b.WriteString(Header("Cross-Training"))
	b.WriteString("\n")
	if len(m.Workers) == 0 || len(m.Stations) == 0 {
		b.WriteString(Dim("No workers or stations on record."))
		b.WriteString("\n")
		return b.String()
	}

	headers := []string{"WORKER"}
	for _, st := range m.Stations {
		headers = append(headers, st.Code)
	}
	rows := make([][]string, 0, len(m.Workers)+1)
	for _, w := range m.Workers {
		cells := []string{w.Name}
		for _, st := range m.Stations {
			cells = append(cells, levelMark(m.Cells[w.ID][st.ID]))
		}
		rows = append(rows, cells)
	}
	flex := []string{Bold("Flex")}
	for _, f := range m.Flex {
		flex = append(flex, flexPercent(f.FlexPercent))
	}
	rows = append(rows, flex)
	b.WriteString(RenderTable(headers, rows))
	b.WriteString(Dim("E expert · I intermediate · B basic"))
	b.WriteString("\n")

	if len(r.Expiring) > 0 {
		workers := make(map[string]string, len(m.Workers))
		for _, w := range m.Workers {
			workers[w.ID] = w.Name
		}
		stations := make(map[string]string, len(m.Stations))
		for _, st := range m.Stations {
			stations[st.ID] = st.Name
		}

		b.WriteString("\n")
		b.WriteString(Bold("Expiring soon"))
		b.WriteString("\n")
		for _, e := range r.Expiring {
			name := workers[e.WorkerID]
			if name == "" {
				name = TruncID(e.WorkerID)
			}
			fmt.Fprintf(&b, "  %s  %s %s %s\n",
				expiryDays(e.DaysLeft), name, Dim("·"), stationName(stations, e.StationID)+" "+Dim(string(e.Level)))
		}
	}
	return b.String()
}

func levelMark(c metrics.CertCell) string {
	if !c.Certified {
		return Dim("·")
	}
	switch c.Level {
	case domain.LevelExpert:
		return StyleGreen.Render("E")
	case domain.LevelIntermediate:
		return StyleBlue.Render("I")
	case domain.LevelBasic:
		return StyleYellow.Render("B")
	default:
		return Dim("?")
	}
}

func flexPercent(pct int) string {
	text := fmt.Sprintf("%d%%", pct)
	switch {
	case pct >= 50:
		return StyleGreen.Render(text)
	case pct >= 25:
		return StyleYellow.Render(text)
	default:
		return StyleRed.Render(text)
	}
}

func expiryDays(days int) string {
	text := fmt.Sprintf("%3dd", days)
	if days <= 14 {
		return StyleRed.Render(text)
	}
	return StyleYellow.Render(text)
}
