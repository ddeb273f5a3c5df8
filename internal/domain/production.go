package domain

import "time"

// Module is one factory-built box moving through the station line.
type Module struct {
	ID               string       `json:"id"`
	Serial           string       `json:"serial"`
	ProjectID        string       `json:"project_id"`
	FactoryID        string       `json:"factory_id"`
	Status           ModuleStatus `json:"status"`
	CurrentStationID *string      `json:"current_station_id"`
	BuildingCategory string       `json:"building_category"`
	BuildSequence    int          `json:"build_sequence"`
	CompletedAt      *time.Time   `json:"completed_at"`
}

// TaktEvent records one production cycle at a station.
type TaktEvent struct {
	ID            string    `json:"id"`
	ModuleID      string    `json:"module_id"`
	StationID     string    `json:"station_id"`
	ExpectedHours float64   `json:"expected_hours"`
	ActualHours   *float64  `json:"actual_hours"`
	CompletedAt   time.Time `json:"completed_at"`
}

// QCRecord is one inspection. When ReworkRequired is set the record doubles
// as a defect whose fix cycle ends at ReworkCompletedAt.
type QCRecord struct {
	ID                string     `json:"id"`
	ModuleID          string     `json:"module_id"`
	ModuleSerial      string     `json:"module_serial"`
	StationID         string     `json:"station_id"`
	InspectedAt       time.Time  `json:"inspected_at"`
	Passed            bool       `json:"passed"`
	ReworkRequired    bool       `json:"rework_required"`
	ReworkCompletedAt *time.Time `json:"rework_completed_at"`
	BuildingCategory  string     `json:"building_category"`
	Notes             string     `json:"notes"`
}

// Factory is a plant. Production records hang off ID; projects and quotes
// reference Code.
type Factory struct {
	ID    string      `json:"id"`
	Code  string      `json:"code"`
	Name  string      `json:"name"`
	Plant PlantConfig `json:"plant"`
}

// PlantConfig is a factory's time configuration.
type PlantConfig struct {
	FactoryID             string `json:"factory_id"`
	ShiftStart            string `json:"shift_start"`             // "HH:MM"
	ShiftEnd              string `json:"shift_end"`               // "HH:MM"
	BreakMinutes          int    `json:"break_minutes"`
	LunchMinutes          int    `json:"lunch_minutes"`
	TargetDailyThroughput int    `json:"target_daily_throughput"`
}

// DefaultPlantConfig is used when a factory has no stored configuration.
func DefaultPlantConfig(factoryID string) PlantConfig {
	return PlantConfig{
		FactoryID:             factoryID,
		ShiftStart:            "06:00",
		ShiftEnd:              "14:30",
		BreakMinutes:          30,
		LunchMinutes:          30,
		TargetDailyThroughput: 2,
	}
}
