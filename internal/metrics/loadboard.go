package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

// Shift timing used for load-board pacing.
const (
	ShiftStartHour          = 6
	ShiftHours              = 8.5
	DefaultTargetThroughput = 2
	PaceBehindThreshold     = 0.8
	NextUpLimit             = 5
)

type LoadBoardInput struct {
	Now              time.Time
	TargetThroughput int
	Stations         []domain.Station
	InFlight         []domain.Module
	CompletedToday   []domain.Module
}

type StationQueue struct {
	StationID   string          `json:"station_id"`
	StationName string          `json:"station_name"`
	Sequence    int             `json:"sequence"`
	Total       int             `json:"total"`
	InProgress  int             `json:"in_progress"`
	Waiting     int             `json:"waiting"`
	OnHold      int             `json:"on_hold"`
	Modules     []domain.Module `json:"modules"`
}

type NextUpModule struct {
	ModuleID    string `json:"module_id"`
	Serial      string `json:"serial"`
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`
}

type LoadBoardSnapshot struct {
	Now              time.Time         `json:"now"`
	TargetThroughput int               `json:"target_throughput"`
	HoursElapsed     float64           `json:"hours_elapsed"`
	ExpectedByNow    int               `json:"expected_by_now"`
	ActualCompleted  int               `json:"actual_completed"`
	Pace             float64           `json:"pace"`
	PaceStatus       domain.PaceStatus `json:"pace_status"`
	Queues           []StationQueue    `json:"queues"`
	Unassigned       int               `json:"unassigned"`
	NextUp           []NextUpModule    `json:"next_up"`
}

// BuildLoadBoard partitions in-flight modules per station and compares
// today's completions with the linear expectation for the elapsed shift.
func BuildLoadBoard(input LoadBoardInput) LoadBoardSnapshot {
	target := input.TargetThroughput
	if target <= 0 {
		target = DefaultTargetThroughput
	}

	snap := LoadBoardSnapshot{
		Now:              input.Now,
		TargetThroughput: target,
		ActualCompleted:  len(input.CompletedToday),
	}

	stationIndex := make(map[string]int, len(input.Stations))
	snap.Queues = make([]StationQueue, len(input.Stations))
	for i, st := range input.Stations {
		stationIndex[st.ID] = i
		snap.Queues[i] = StationQueue{StationID: st.ID, StationName: st.Name, Sequence: st.Sequence}
	}

	for _, mod := range input.InFlight {
		if mod.CurrentStationID == nil {
			snap.Unassigned++
			continue
		}
		idx, ok := stationIndex[*mod.CurrentStationID]
		if !ok {
			snap.Unassigned++
			continue
		}
		q := &snap.Queues[idx]
		q.Total++
		q.Modules = append(q.Modules, mod)
		switch mod.Status {
		case domain.ModuleInProgress:
			q.InProgress++
		case domain.ModuleInQueue:
			q.Waiting++
		case domain.ModuleQCHold:
			q.OnHold++
		}
	}

	snap.HoursElapsed, snap.ExpectedByNow = ExpectedByNow(input.Now, target)
	snap.Pace = Pace(snap.ActualCompleted, snap.ExpectedByNow)
	snap.PaceStatus = ClassifyPace(snap.Pace)
	snap.NextUp = nextUp(snap.Queues)
	return snap
}

// ExpectedByNow returns hours into the shift and the whole modules that
// should be complete by now. Past the end of the shift the expectation
// exceeds the target.
func ExpectedByNow(now time.Time, target int) (float64, int) {
	elapsed := math.Max(0, float64(now.Hour()-ShiftStartHour)+float64(now.Minute())/60)
	return elapsed, int(math.Floor(elapsed / ShiftHours * float64(target)))
}

// Pace is actual over expected. With nothing expected yet any completion
// counts as fully on pace.
func Pace(actual, expected int) float64 {
	if expected == 0 {
		if actual > 0 {
			return 1
		}
		return 0
	}
	return float64(actual) / float64(expected)
}

func ClassifyPace(pace float64) domain.PaceStatus {
	switch {
	case pace >= 1:
		return domain.PaceOnTrack
	case pace >= PaceBehindThreshold:
		return domain.PaceBehind
	default:
		return domain.PaceAtRisk
	}
}

func nextUp(queues []StationQueue) []NextUpModule {
	type candidate struct {
		mod domain.Module
		q   *StationQueue
	}
	var queued []candidate
	for i := range queues {
		for _, mod := range queues[i].Modules {
			if mod.Status == domain.ModuleInQueue {
				queued = append(queued, candidate{mod: mod, q: &queues[i]})
			}
		}
	}
	sort.SliceStable(queued, func(i, j int) bool {
		if queued[i].q.Sequence != queued[j].q.Sequence {
			return queued[i].q.Sequence < queued[j].q.Sequence
		}
		return queued[i].mod.BuildSequence < queued[j].mod.BuildSequence
	})

	out := make([]NextUpModule, 0, NextUpLimit)
	for _, c := range queued {
		if len(out) == NextUpLimit {
			break
		}
		out = append(out, NextUpModule{
			ModuleID:    c.mod.ID,
			Serial:      c.mod.Serial,
			StationID:   c.q.StationID,
			StationName: c.q.StationName,
		})
	}
	return out
}
