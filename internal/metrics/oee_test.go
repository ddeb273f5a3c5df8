package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/stretchr/testify/assert"
)

func hours(v float64) *float64 { return &v }

func scenarioBInput() OEEInput {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	var shifts []domain.ShiftRecord
	for i, worker := range []string{"w-1", "w-2"} {
		shifts = append(shifts, domain.ShiftRecord{
			ID:         fmt.Sprintf("s-%d", i),
			WorkerID:   worker,
			ClockIn:    from.Add(8 * time.Hour),
			TotalHours: hours(36),
		})
	}

	var takt []domain.TaktEvent
	for i := 0; i < 10; i++ {
		takt = append(takt, domain.TaktEvent{ID: fmt.Sprintf("t-%d", i), ExpectedHours: 5, ActualHours: hours(4)})
	}

	var inspections []domain.QCRecord
	for i := 0; i < 10; i++ {
		inspections = append(inspections, domain.QCRecord{ID: fmt.Sprintf("qc-%d", i), Passed: i < 8})
	}

	return OEEInput{
		From:        from,
		To:          to,
		Plant:       domain.PlantConfig{ShiftStart: "08:00", ShiftEnd: "16:30", BreakMinutes: 30},
		Shifts:      shifts,
		TaktEvents:  takt,
		Inspections: inspections,
	}
}

func TestComputeOEE_ReferenceWeek(t *testing.T) {
	result := ComputeOEE(scenarioBInput())

	assert.Equal(t, 8.0, result.Breakdown.ExpectedHoursPerDay)
	assert.Equal(t, 5, result.Breakdown.DaysInRange)
	assert.Equal(t, 2, result.Breakdown.ShiftCount)
	assert.Equal(t, 80.0, result.Breakdown.ExpectedTotalHours)
	assert.Equal(t, 72.0, result.Breakdown.ActualHoursWorked)

	assert.Equal(t, 90.0, result.AvailabilityPct)
	assert.Equal(t, 100.0, result.PerformancePct, "performance is capped at 100%")
	assert.Equal(t, 80.0, result.QualityPct)
	assert.Equal(t, 72.0, result.OEEPct)
	assert.InDelta(t, 0.72, result.OEE, 1e-9)
}

func TestComputeOEE_NoInspections_QualityIsPerfect(t *testing.T) {
	in := scenarioBInput()
	in.Inspections = nil
	result := ComputeOEE(in)
	assert.Equal(t, 1.0, result.Quality)
}

func TestComputeOEE_NoTaktEvents_PerformanceZero(t *testing.T) {
	in := scenarioBInput()
	in.TaktEvents = nil
	result := ComputeOEE(in)
	assert.Equal(t, 0.0, result.Performance)
	assert.Equal(t, 0.0, result.OEE)
}

func TestComputeOEE_TaktWithoutActuals_PerformanceOne(t *testing.T) {
	in := scenarioBInput()
	in.TaktEvents = []domain.TaktEvent{{ExpectedHours: 5}, {ExpectedHours: 6}}
	result := ComputeOEE(in)
	assert.Equal(t, 1.0, result.Performance)
}

func TestComputeOEE_ZeroExpectedHours_AvailabilityZero(t *testing.T) {
	in := scenarioBInput()
	in.Plant = domain.PlantConfig{ShiftStart: "bogus", ShiftEnd: "16:30"}
	result := ComputeOEE(in)
	assert.Equal(t, 0.0, result.Breakdown.ExpectedTotalHours)
	assert.Equal(t, 0.0, result.Availability)
}

func TestComputeOEE_OverworkedCappedAtOne(t *testing.T) {
	in := scenarioBInput()
	in.Shifts[0].TotalHours = hours(500)
	result := ComputeOEE(in)
	assert.Equal(t, 1.0, result.Availability)
}

func TestComputeOEE_NoShifts_UsesSingleCrew(t *testing.T) {
	in := scenarioBInput()
	in.Shifts = nil
	result := ComputeOEE(in)
	assert.Equal(t, 40.0, result.Breakdown.ExpectedTotalHours)
	assert.Equal(t, 0.0, result.Availability)
}

func TestExpectedHoursPerDay_DefaultPlant(t *testing.T) {
	assert.Equal(t, 7.5, ExpectedHoursPerDay(domain.DefaultPlantConfig("f-1")))
}

func TestExpectedHoursPerDay_Overnight(t *testing.T) {
	assert.Equal(t, 8.0, ExpectedHoursPerDay(domain.PlantConfig{ShiftStart: "22:00", ShiftEnd: "06:00"}))
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("06:30")
	assert.NoError(t, err)
	assert.Equal(t, 390, m)

	m, err = ParseClock("14:30:00")
	assert.NoError(t, err)
	assert.Equal(t, 870, m)

	_, err = ParseClock("6.30")
	assert.Error(t, err)
}

func TestDaysInRange(t *testing.T) {
	d := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysInRange(d, d))
	assert.Equal(t, 7, DaysInRange(d, d.AddDate(0, 0, 6)))
	assert.Equal(t, 1, DaysInRange(d, d.AddDate(0, 0, -3)))
}
