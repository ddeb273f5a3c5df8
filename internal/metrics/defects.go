package metrics

import (
	"sort"
	"time"

	"github.com/modbuild/pulse/internal/domain"
)

// CustomCategoryMultiplier scales expected rework time for custom builds.
const CustomCategoryMultiplier = 1.4

type DefectFilter struct {
	StationID string     `json:"station_id"`
	From      *time.Time `json:"from"`
	To        *time.Time `json:"to"`
}

func (f DefectFilter) matches(r *domain.QCRecord) bool {
	if f.StationID != "" && r.StationID != f.StationID {
		return false
	}
	if f.From != nil && r.InspectedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.InspectedAt.After(*f.To) {
		return false
	}
	return true
}

type DefectCycle struct {
	QCRecordID         string     `json:"qc_record_id"`
	ModuleID           string     `json:"module_id"`
	ModuleSerial       string     `json:"module_serial"`
	StationID          string     `json:"station_id"`
	BuildingCategory   string     `json:"building_category"`
	HoldAt             time.Time  `json:"hold_at"`
	PassAt             *time.Time `json:"pass_at"`
	DurationHours      float64    `json:"duration_hours"`
	CategoryMultiplier float64    `json:"category_multiplier"`
	WeightedHours      float64    `json:"weighted_hours"`
	Ongoing            bool       `json:"ongoing"`
}

// DefectCycles computes the hold-to-pass span for every rework record that
// passes the filter. Ongoing defects are measured up to now.
func DefectCycles(records []domain.QCRecord, filter DefectFilter, now time.Time) []DefectCycle {
	var cycles []DefectCycle
	for i := range records {
		r := &records[i]
		if !r.ReworkRequired || !filter.matches(r) {
			continue
		}

		end := domain.TimeOr(r.ReworkCompletedAt, now)
		duration := end.Sub(r.InspectedAt).Hours()
		if duration < 0 {
			duration = 0
		}
		multiplier := categoryMultiplier(r.BuildingCategory)

		cycles = append(cycles, DefectCycle{
			QCRecordID:         r.ID,
			ModuleID:           r.ModuleID,
			ModuleSerial:       r.ModuleSerial,
			StationID:          r.StationID,
			BuildingCategory:   r.BuildingCategory,
			HoldAt:             r.InspectedAt,
			PassAt:             r.ReworkCompletedAt,
			DurationHours:      round1(duration),
			CategoryMultiplier: multiplier,
			WeightedHours:      round1(duration / multiplier),
			Ongoing:            r.ReworkCompletedAt == nil,
		})
	}
	return cycles
}

func categoryMultiplier(category string) float64 {
	if category == domain.BuildingCategoryCustom {
		return CustomCategoryMultiplier
	}
	return 1.0
}

// StationDefectStats counts every cycle at a station. The average covers
// completed cycles only and is 0 while all of them are still open.
type StationDefectStats struct {
	StationID        string  `json:"station_id"`
	Count            int     `json:"count"`
	AvgDurationHours float64 `json:"avg_duration_hours"`
	OngoingCount     int     `json:"ongoing_count"`
}

type CategoryDefectStats struct {
	Category         string  `json:"category"`
	Count            int     `json:"count"`
	AvgWeightedHours float64 `json:"avg_weighted_hours"`
}

type DefectFixStats struct {
	Total            int                   `json:"total"`
	Completed        int                   `json:"completed"`
	Ongoing          int                   `json:"ongoing"`
	AvgDurationHours float64               `json:"avg_duration_hours"`
	AvgWeightedHours float64               `json:"avg_weighted_hours"`
	ByStation        []StationDefectStats  `json:"by_station"`
	ByCategory       []CategoryDefectStats `json:"by_category"`
	LongestOngoing   *DefectCycle          `json:"longest_ongoing"`
}

// ComputeDefectFixStats aggregates cycles. Every average, overall or per
// station or category, covers completed cycles only. Counts cover every cycle.
func ComputeDefectFixStats(cycles []DefectCycle) DefectFixStats {
	stats := DefectFixStats{Total: len(cycles)}

	var sumDuration, sumWeighted float64
	type acc struct {
		count, ongoing, completed int
		sum                       float64
	}
	stations := map[string]*acc{}
	categories := map[string]*acc{}

	for i := range cycles {
		c := &cycles[i]
		if c.Ongoing {
			stats.Ongoing++
			if stats.LongestOngoing == nil || c.DurationHours > stats.LongestOngoing.DurationHours {
				longest := *c
				stats.LongestOngoing = &longest
			}
		} else {
			stats.Completed++
			sumDuration += c.DurationHours
			sumWeighted += c.WeightedHours
		}

		st := stations[c.StationID]
		if st == nil {
			st = &acc{}
			stations[c.StationID] = st
		}
		st.count++
		if c.Ongoing {
			st.ongoing++
		} else {
			st.completed++
			st.sum += c.DurationHours
		}

		category := domain.CoalesceStr(c.BuildingCategory, "standard")
		ct := categories[category]
		if ct == nil {
			ct = &acc{}
			categories[category] = ct
		}
		ct.count++
		if !c.Ongoing {
			ct.completed++
			ct.sum += c.WeightedHours
		}
	}

	if stats.Completed > 0 {
		stats.AvgDurationHours = round1(sumDuration / float64(stats.Completed))
		stats.AvgWeightedHours = round1(sumWeighted / float64(stats.Completed))
	}

	for id, a := range stations {
		stats.ByStation = append(stats.ByStation, StationDefectStats{
			StationID:        id,
			Count:            a.count,
			AvgDurationHours: completedAvg(a.sum, a.completed),
			OngoingCount:     a.ongoing,
		})
	}
	sort.Slice(stats.ByStation, func(i, j int) bool {
		return stats.ByStation[i].StationID < stats.ByStation[j].StationID
	})

	for name, a := range categories {
		stats.ByCategory = append(stats.ByCategory, CategoryDefectStats{
			Category:         name,
			Count:            a.count,
			AvgWeightedHours: completedAvg(a.sum, a.completed),
		})
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})

	return stats
}

func completedAvg(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}
