package metrics

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/modbuild/pulse/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func randomOEEInput(rng *rand.Rand) OEEInput {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	in := OEEInput{
		From: from,
		To:   from.AddDate(0, 0, rng.Intn(14)),
		Plant: domain.PlantConfig{
			ShiftStart:   fmt.Sprintf("%02d:00", 5+rng.Intn(4)),
			ShiftEnd:     fmt.Sprintf("%02d:30", 13+rng.Intn(5)),
			BreakMinutes: rng.Intn(45),
			LunchMinutes: rng.Intn(45),
		},
	}
	for i := 0; i < rng.Intn(12); i++ {
		in.Shifts = append(in.Shifts, domain.ShiftRecord{
			WorkerID:   fmt.Sprintf("w-%d", rng.Intn(5)),
			TotalHours: hours(rng.Float64() * 12),
		})
	}
	for i := 0; i < rng.Intn(12); i++ {
		e := domain.TaktEvent{ExpectedHours: rng.Float64() * 10}
		if rng.Intn(3) > 0 {
			e.ActualHours = hours(rng.Float64() * 10)
		}
		in.TaktEvents = append(in.TaktEvents, e)
	}
	for i := 0; i < rng.Intn(12); i++ {
		in.Inspections = append(in.Inspections, domain.QCRecord{Passed: rng.Intn(4) > 0})
	}
	return in
}

func TestComputeOEE_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 300; trial++ {
		r := ComputeOEE(randomOEEInput(rng))

		assert.Equal(t, r.Availability*r.Performance*r.Quality, r.OEE, "trial %d", trial)
		for name, v := range map[string]float64{
			"oee": r.OEE, "availability": r.Availability, "performance": r.Performance, "quality": r.Quality,
		} {
			assert.GreaterOrEqual(t, v, 0.0, "trial %d: %s", trial, name)
			assert.LessOrEqual(t, v, 1.0, "trial %d: %s", trial, name)
		}
	}
}

func TestScoreCapacity_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := DefaultCapacityWeights()
	for trial := 0; trial < 500; trial++ {
		s := ScoreCapacity(CapacityInput{
			ProjectCount: rng.Intn(12),
			TaskCount:    rng.Intn(80),
			OverdueCount: rng.Intn(20),
		}, w)
		assert.GreaterOrEqual(t, s.Score, 0, "trial %d", trial)
		assert.LessOrEqual(t, s.Score, 100, "trial %d", trial)
	}
}

func TestForecastPipeline_WeightedNeverExceedsPipeline(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	statuses := append([]domain.QuoteStatus{domain.QuoteWon, domain.QuoteLost}, domain.ActiveQuoteStatuses...)
	for trial := 0; trial < 200; trial++ {
		var quotes []domain.SalesQuote
		for i := 0; i < rng.Intn(15); i++ {
			q := domain.SalesQuote{
				Status:     statuses[rng.Intn(len(statuses))],
				TotalPrice: decimal.NewFromFloat(rng.Float64() * 1e6).Round(2),
			}
			if rng.Intn(2) == 0 {
				q.OutlookPercentage = intPtr(rng.Intn(101))
			}
			quotes = append(quotes, q)
		}
		f := ForecastPipeline(quotes, testNow)
		assert.True(t, f.WeightedPipelineValue.LessThanOrEqual(f.PipelineValue),
			"trial %d: weighted %s > pipeline %s", trial, f.WeightedPipelineValue, f.PipelineValue)
	}
}

func TestScorers_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	oeeIn := randomOEEInput(rng)
	if diff := cmp.Diff(ComputeOEE(oeeIn), ComputeOEE(oeeIn)); diff != "" {
		t.Errorf("ComputeOEE not idempotent (-first +second):\n%s", diff)
	}

	healthIn := HealthInput{
		Now:     testNow,
		Project: domain.Project{ID: "p-1", DeliveryDate: dayOffset(5)},
		Tasks:   []domain.WorkItem{task(domain.TaskNotStarted, dayOffset(-1))},
	}
	if diff := cmp.Diff(AssessProjectHealth(healthIn), AssessProjectHealth(healthIn)); diff != "" {
		t.Errorf("AssessProjectHealth not idempotent:\n%s", diff)
	}

	qc := []domain.QCRecord{
		{ID: "a", StationID: "s1", InspectedAt: at(8, 0), ReworkRequired: true},
		{ID: "b", StationID: "s2", InspectedAt: at(9, 0), ReworkRequired: true, ReworkCompletedAt: timePtr(at(10, 0))},
	}
	first := ComputeDefectFixStats(DefectCycles(qc, DefectFilter{}, at(12, 0)))
	second := ComputeDefectFixStats(DefectCycles(qc, DefectFilter{}, at(12, 0)))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("defect stats not idempotent:\n%s", diff)
	}

	lb := LoadBoardInput{
		Now:      at(11, 0),
		Stations: []domain.Station{{ID: "s1", Sequence: 1}},
		InFlight: []domain.Module{{ID: "m", Status: domain.ModuleInQueue, CurrentStationID: strPtr("s1")}},
	}
	if diff := cmp.Diff(BuildLoadBoard(lb), BuildLoadBoard(lb)); diff != "" {
		t.Errorf("BuildLoadBoard not idempotent:\n%s", diff)
	}

	quotes := []domain.SalesQuote{
		{Status: domain.QuoteSent, TotalPrice: price(10), ExpectedCloseTimeframe: "asap"},
		{Status: domain.QuoteWon, TotalPrice: price(20)},
	}
	decimalEqual := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })
	if diff := cmp.Diff(ForecastPipeline(quotes, testNow), ForecastPipeline(quotes, testNow), decimalEqual); diff != "" {
		t.Errorf("ForecastPipeline not idempotent:\n%s", diff)
	}

	workers := []domain.Worker{{ID: "w-1", Name: "Ada"}, {ID: "w-2", Name: "Bo"}}
	stations := []domain.Station{{ID: "s1", Sequence: 1}, {ID: "s2", Sequence: 2}}
	util := UtilizationInput{
		Date:     at(0, 0),
		Now:      at(12, 0),
		Workers:  workers,
		Stations: stations,
		Shifts:   []domain.ShiftRecord{{ID: "sh-1", WorkerID: "w-1", ClockIn: at(6, 0)}},
		Assignments: []domain.StationAssignment{
			{ID: "a-1", StationID: "s1", LeadID: strPtr("w-1"), CrewIDs: []string{"w-2"}, StartTime: at(7, 0), EndTime: timePtr(at(9, 30))},
			{ID: "a-2", StationID: "s2", CrewIDs: []string{"w-1"}, StartTime: at(10, 0)},
		},
	}
	if diff := cmp.Diff(BuildUtilizationMatrix(util), BuildUtilizationMatrix(util)); diff != "" {
		t.Errorf("BuildUtilizationMatrix not idempotent:\n%s", diff)
	}

	certs := []domain.CertificationRecord{
		{ID: "c-1", WorkerID: "w-1", StationID: "s1", Level: domain.LevelExpert, CertifiedAt: at(8, 0), Active: true},
		{ID: "c-2", WorkerID: "w-2", StationID: "s1", Level: domain.LevelBasic, CertifiedAt: at(8, 0),
			ExpiresAt: timePtr(at(8, 0).AddDate(0, 0, 10)), Active: true},
	}
	cross := CrossTrainingInput{Workers: workers, Stations: stations, Certifications: certs}
	if diff := cmp.Diff(BuildCrossTrainingMatrix(cross), BuildCrossTrainingMatrix(cross)); diff != "" {
		t.Errorf("BuildCrossTrainingMatrix not idempotent:\n%s", diff)
	}
	if diff := cmp.Diff(ExpiringWithin(certs, testNow, 30), ExpiringWithin(certs, testNow, 30)); diff != "" {
		t.Errorf("ExpiringWithin not idempotent:\n%s", diff)
	}

	inputs := []CapacityInput{
		{Member: domain.TeamMember{ID: "m-1", Name: "Riley"}, ProjectCount: 2, TaskCount: 4, OverdueCount: 1},
		{Member: domain.TeamMember{ID: "m-2", Name: "Jordan"}, ProjectCount: 1},
	}
	score := func() []CapacityScore {
		out := make([]CapacityScore, 0, len(inputs))
		for _, in := range inputs {
			out = append(out, ScoreCapacity(in, DefaultCapacityWeights()))
		}
		return RankCapacity(out)
	}
	if diff := cmp.Diff(score(), score()); diff != "" {
		t.Errorf("capacity scoring not idempotent:\n%s", diff)
	}
}
