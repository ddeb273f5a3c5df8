package metrics

import (
	"math"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

type UtilizationInput struct {
	Date        time.Time
	Now         time.Time
	Workers     []domain.Worker
	Stations    []domain.Station
	Shifts      []domain.ShiftRecord
	Assignments []domain.StationAssignment
}

type UtilizationCell struct {
	Minutes         int                      `json:"minutes"`
	Status          domain.UtilizationStatus `json:"status"`
	AssignmentCount int                      `json:"assignment_count"`
}

type WorkerShift struct {
	ClockIn    time.Time  `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out"`
	TotalHours float64    `json:"total_hours"`
}

type UtilizationRow struct {
	WorkerID     string                     `json:"worker_id"`
	WorkerName   string                     `json:"worker_name"`
	Shift        *WorkerShift               `json:"shift"`
	TotalMinutes int                        `json:"total_minutes"`
	Stations     map[string]UtilizationCell `json:"stations"`
}

type UtilizationMatrix struct {
	Date          time.Time                 `json:"date"`
	Workers       []domain.Worker           `json:"workers"`
	Stations      []domain.Station          `json:"stations"`
	Rows          map[string]UtilizationRow `json:"rows"`
	StationTotals map[string]int            `json:"station_totals"`
}

// Cell returns the cell for a worker/station pair; missing pairs read idle.
func (m UtilizationMatrix) Cell(workerID, stationID string) UtilizationCell {
	if row, ok := m.Rows[workerID]; ok {
		if c, ok := row.Stations[stationID]; ok {
			return c
		}
	}
	return UtilizationCell{Status: domain.UtilIdle}
}

// BuildUtilizationMatrix sums assignment minutes per worker and station.
// Open assignments run until now.
func BuildUtilizationMatrix(input UtilizationInput) UtilizationMatrix {
	m := UtilizationMatrix{
		Date:          domain.DateOf(input.Date, input.Date.Location()),
		Workers:       input.Workers,
		Stations:      input.Stations,
		Rows:          make(map[string]UtilizationRow, len(input.Workers)),
		StationTotals: make(map[string]int, len(input.Stations)),
	}

	shiftByWorker := make(map[string]domain.ShiftRecord, len(input.Shifts))
	for _, s := range input.Shifts {
		if prev, ok := shiftByWorker[s.WorkerID]; !ok || s.ClockIn.Before(prev.ClockIn) {
			shiftByWorker[s.WorkerID] = s
		}
	}

	for _, w := range input.Workers {
		row := UtilizationRow{
			WorkerID:   w.ID,
			WorkerName: w.Name,
			Stations:   make(map[string]UtilizationCell, len(input.Stations)),
		}
		if s, ok := shiftByWorker[w.ID]; ok {
			row.Shift = &WorkerShift{ClockIn: s.ClockIn, ClockOut: s.ClockOut, TotalHours: round1(s.Hours())}
		}

		for _, st := range input.Stations {
			cell := UtilizationCell{Status: domain.UtilIdle}
			var minutes float64
			for i := range input.Assignments {
				a := &input.Assignments[i]
				if a.StationID != st.ID || !a.Involves(w.ID) {
					continue
				}
				cell.AssignmentCount++
				if span := domain.TimeOr(a.EndTime, input.Now).Sub(a.StartTime).Minutes(); span > 0 {
					minutes += span
				}
			}
			cell.Minutes = int(math.Round(minutes))
			if cell.Minutes > 0 {
				cell.Status = domain.UtilActive
			}
			row.Stations[st.ID] = cell
			row.TotalMinutes += cell.Minutes
			m.StationTotals[st.ID] += cell.Minutes
		}
		m.Rows[w.ID] = row
	}
	return m
}
