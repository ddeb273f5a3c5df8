package domain

import "time"

type Station struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Sequence  int    `json:"sequence"`
	FactoryID string `json:"factory_id"`
}

type Worker struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	PrimaryStationID *string `json:"primary_station_id"`
	Active           bool    `json:"active"`
	Lead             bool    `json:"lead"`
	FactoryID        string  `json:"factory_id"`
}

// ShiftRecord is one clock-in/clock-out span. ClockOut is nil while the
// shift is ongoing.
type ShiftRecord struct {
	ID         string     `json:"id"`
	WorkerID   string     `json:"worker_id"`
	ClockIn    time.Time  `json:"clock_in"`
	ClockOut   *time.Time `json:"clock_out"`
	TotalHours *float64   `json:"total_hours"`
}

// Hours returns the recorded total, or the closed span when no total was
// recorded. Ongoing shifts without a total contribute zero.
func (s *ShiftRecord) Hours() float64 {
	if s.TotalHours != nil {
		return *s.TotalHours
	}
	if s.ClockOut == nil || s.ClockOut.Before(s.ClockIn) {
		return 0
	}
	return s.ClockOut.Sub(s.ClockIn).Hours()
}

// StationAssignment places a lead and crew on a station for a module.
// EndTime is nil while the assignment is ongoing.
type StationAssignment struct {
	ID        string     `json:"id"`
	StationID string     `json:"station_id"`
	ModuleID  *string    `json:"module_id"`
	LeadID    *string    `json:"lead_id"`
	CrewIDs   []string   `json:"crew_ids"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// Involves reports whether the worker leads or crews the assignment.
func (a *StationAssignment) Involves(workerID string) bool {
	if a.LeadID != nil && *a.LeadID == workerID {
		return true
	}
	for _, id := range a.CrewIDs {
		if id == workerID {
			return true
		}
	}
	return false
}

type CertificationRecord struct {
	ID                 string             `json:"id"`
	WorkerID           string             `json:"worker_id"`
	StationID          string             `json:"station_id"`
	Level              CertificationLevel `json:"level"`
	CertifiedAt        time.Time          `json:"certified_at"`
	ExpiresAt          *time.Time         `json:"expires_at"`
	Active             bool               `json:"active"`
	AvgCompletionHours *float64           `json:"avg_completion_hours"`
	ReworkRate         *float64           `json:"rework_rate"`
}
