package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

type CrossTrainingInput struct {
	Workers        []domain.Worker
	Stations       []domain.Station
	Certifications []domain.CertificationRecord
}

// CertCell is one worker/station entry. Only Certified is meaningful when
// the worker holds no active certification for the station.
type CertCell struct {
	Certified          bool                      `json:"certified"`
	Level              domain.CertificationLevel `json:"level"`
	CertifiedAt        *time.Time                `json:"certified_at"`
	ExpiresAt          *time.Time                `json:"expires_at"`
	AvgCompletionHours *float64                  `json:"avg_completion_hours"`
	ReworkRate         *float64                  `json:"rework_rate"`
}

type StationFlex struct {
	StationID      string `json:"station_id"`
	StationName    string `json:"station_name"`
	CertifiedCount int    `json:"certified_count"`
	TotalWorkers   int    `json:"total_workers"`
	FlexPercent    int    `json:"flex_percent"`
}

type CrossTrainingMatrix struct {
	Workers  []domain.Worker                `json:"workers"`
	Stations []domain.Station               `json:"stations"`
	Cells    map[string]map[string]CertCell `json:"cells"`
	Flex     []StationFlex                  `json:"flex"`
}

// BuildCrossTrainingMatrix lays active certifications over the worker and
// station grid and derives per-station flex. When a pair has several active
// certifications the highest level wins.
func BuildCrossTrainingMatrix(input CrossTrainingInput) CrossTrainingMatrix {
	best := map[[2]string]domain.CertificationRecord{}
	for _, c := range input.Certifications {
		if !c.Active {
			continue
		}
		key := [2]string{c.WorkerID, c.StationID}
		if prev, ok := best[key]; !ok || c.Level.Rank() > prev.Level.Rank() {
			best[key] = c
		}
	}

	m := CrossTrainingMatrix{
		Workers:  input.Workers,
		Stations: input.Stations,
		Cells:    make(map[string]map[string]CertCell, len(input.Workers)),
	}
	for _, w := range input.Workers {
		row := make(map[string]CertCell, len(input.Stations))
		for _, st := range input.Stations {
			c, ok := best[[2]string{w.ID, st.ID}]
			if !ok {
				row[st.ID] = CertCell{}
				continue
			}
			certifiedAt := c.CertifiedAt
			row[st.ID] = CertCell{
				Certified:          true,
				Level:              c.Level,
				CertifiedAt:        &certifiedAt,
				ExpiresAt:          c.ExpiresAt,
				AvgCompletionHours: c.AvgCompletionHours,
				ReworkRate:         c.ReworkRate,
			}
		}
		m.Cells[w.ID] = row
	}

	m.Flex = ComputeStationFlex(m)
	return m
}

// ComputeStationFlex reports the share of workers certified on each station,
// in station order. Zero workers yields zero flex.
func ComputeStationFlex(m CrossTrainingMatrix) []StationFlex {
	total := len(m.Workers)
	out := make([]StationFlex, 0, len(m.Stations))
	for _, st := range m.Stations {
		f := StationFlex{StationID: st.ID, StationName: st.Name, TotalWorkers: total}
		for _, w := range m.Workers {
			if m.Cells[w.ID][st.ID].Certified {
				f.CertifiedCount++
			}
		}
		if total > 0 {
			f.FlexPercent = int(math.Round(float64(f.CertifiedCount) / float64(total) * 100))
		}
		out = append(out, f)
	}
	return out
}

type ExpiringCert struct {
	WorkerID  string                    `json:"worker_id"`
	StationID string                    `json:"station_id"`
	Level     domain.CertificationLevel `json:"level"`
	ExpiresAt time.Time                 `json:"expires_at"`
	DaysLeft  int                       `json:"days_left"`
}

// ExpiringWithin lists active certifications expiring between now and
// now+days, soonest first. Already-expired certifications are excluded.
func ExpiringWithin(certs []domain.CertificationRecord, now time.Time, days int) []ExpiringCert {
	limit := now.AddDate(0, 0, days)
	var out []ExpiringCert
	for _, c := range certs {
		if !c.Active || c.ExpiresAt == nil {
			continue
		}
		if c.ExpiresAt.Before(now) || c.ExpiresAt.After(limit) {
			continue
		}
		out = append(out, ExpiringCert{
			WorkerID:  c.WorkerID,
			StationID: c.StationID,
			Level:     c.Level,
			ExpiresAt: *c.ExpiresAt,
			DaysLeft:  DaysUntil(*c.ExpiresAt, now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out
}
