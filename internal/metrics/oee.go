package metrics

import (
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

type OEEInput struct {
	From        time.Time
	To          time.Time
	Plant       domain.PlantConfig
	Shifts      []domain.ShiftRecord
	TaktEvents  []domain.TaktEvent
	Inspections []domain.QCRecord
}

// OEEBreakdown carries the raw figures behind each factor.
type OEEBreakdown struct {
	ExpectedHoursPerDay float64 `json:"expected_hours_per_day"`
	DaysInRange         int     `json:"days_in_range"`
	ShiftCount          int     `json:"shift_count"`
	ExpectedTotalHours  float64 `json:"expected_total_hours"`
	ActualHoursWorked   float64 `json:"actual_hours_worked"`
	TaktEventCount      int     `json:"takt_event_count"`
	ExpectedCycleHours  float64 `json:"expected_cycle_hours"`
	ActualCycleHours    float64 `json:"actual_cycle_hours"`
	TotalInspections    int     `json:"total_inspections"`
	PassedInspections   int     `json:"passed_inspections"`
}

type OEEResult struct {
	// Fractions in [0,1].
	OEE          float64 `json:"oee"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`

	// Percentages rounded to one decimal.
	OEEPct          float64 `json:"oee_pct"`
	AvailabilityPct float64 `json:"availability_pct"`
	PerformancePct  float64 `json:"performance_pct"`
	QualityPct      float64 `json:"quality_pct"`

	Breakdown OEEBreakdown `json:"breakdown"`
}

// ComputeOEE multiplies availability, performance and quality over a date
// range.
func ComputeOEE(input OEEInput) OEEResult {
	var b OEEBreakdown

	b.ExpectedHoursPerDay = ExpectedHoursPerDay(input.Plant)
	b.DaysInRange = DaysInRange(input.From, input.To)
	b.ShiftCount = distinctWorkers(input.Shifts)
	b.ExpectedTotalHours = b.ExpectedHoursPerDay * float64(b.DaysInRange) * float64(max(b.ShiftCount, 1))
	for i := range input.Shifts {
		b.ActualHoursWorked += input.Shifts[i].Hours()
	}

	b.TaktEventCount = len(input.TaktEvents)
	for _, e := range input.TaktEvents {
		b.ExpectedCycleHours += e.ExpectedHours
		b.ActualCycleHours += domain.Float64FromPtrWithDefault(0, e.ActualHours)
	}

	b.TotalInspections = len(input.Inspections)
	for _, r := range input.Inspections {
		if r.Passed {
			b.PassedInspections++
		}
	}

	var availability float64
	if b.ExpectedTotalHours > 0 {
		availability = clamp(b.ActualHoursWorked/b.ExpectedTotalHours, 0, 1)
	}

	// Events without recorded actual hours report perfect performance rather
	// than zero; historical OEE reporting depends on this.
	var performance float64
	switch {
	case b.ActualCycleHours > 0:
		performance = clamp(b.ExpectedCycleHours/b.ActualCycleHours, 0, 1)
	case b.TaktEventCount > 0:
		performance = 1
	}

	quality := 1.0
	if b.TotalInspections > 0 {
		quality = float64(b.PassedInspections) / float64(b.TotalInspections)
	}

	oee := availability * performance * quality
	return OEEResult{
		OEE:             oee,
		Availability:    availability,
		Performance:     performance,
		Quality:         quality,
		OEEPct:          pct(oee),
		AvailabilityPct: pct(availability),
		PerformancePct:  pct(performance),
		QualityPct:      pct(quality),
		Breakdown:       b,
	}
}

// ExpectedHoursPerDay is the paid shift length net of break and lunch.
// An unparseable shift window yields zero.
func ExpectedHoursPerDay(plant domain.PlantConfig) float64 {
	start, err := ParseClock(plant.ShiftStart)
	if err != nil {
		return 0
	}
	end, err := ParseClock(plant.ShiftEnd)
	if err != nil {
		return 0
	}
	shiftMin := end - start
	if shiftMin < 0 {
		shiftMin += 24 * 60
	}
	net := shiftMin - plant.BreakMinutes - plant.LunchMinutes
	if net < 0 {
		return 0
	}
	return float64(net) / 60
}

// ParseClock parses "HH:MM" (or "HH:MM:SS") into minutes after midnight.
func ParseClock(s string) (int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q", s)
}

// DaysInRange counts calendar days from from to to inclusive, at least one.
func DaysInRange(from, to time.Time) int {
	a := domain.DateOf(from, time.UTC)
	b := domain.DateOf(to, time.UTC)
	days := int(b.Sub(a).Hours()/24) + 1
	return max(days, 1)
}

func distinctWorkers(shifts []domain.ShiftRecord) int {
	seen := make(map[string]struct{}, len(shifts))
	for _, s := range shifts {
		seen[s.WorkerID] = struct{}{}
	}
	return len(seen)
}
