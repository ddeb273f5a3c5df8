// Package metrics turns pre-fetched operational records into scores and
// classifications. Every function is pure: inputs are never mutated and the
// current time is always passed in.
package metrics

import (
	"math"

	"github.com/modbuild/pulse/internal/domain"
)

// Health thresholds shared by the project health scorer.
const (
	CriticalOverdueCount = 3
	CriticalDaysWindow   = 3
	AtRiskDaysWindow     = 7
)

// Classify maps an overdue count and days-until-deadline to a health state.
// A nil deadline never escalates on its own, and neither does a deadline
// that has already passed.
func Classify(overdueCount int, daysUntilDeadline *int) domain.HealthState {
	within := func(limit int) bool {
		return daysUntilDeadline != nil && *daysUntilDeadline >= 0 && *daysUntilDeadline <= limit
	}

	switch {
	case overdueCount >= CriticalOverdueCount || within(CriticalDaysWindow):
		return domain.HealthCritical
	case overdueCount > 0 || within(AtRiskDaysWindow):
		return domain.HealthAtRisk
	default:
		return domain.HealthOnTrack
	}
}

// HealthPriority returns a numeric priority for sorting (lower = more urgent).
func HealthPriority(s domain.HealthState) int {
	switch s {
	case domain.HealthCritical:
		return 0
	case domain.HealthAtRisk:
		return 1
	default:
		return 2
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// pct converts a 0..1 fraction to a percentage rounded to one decimal.
func pct(fraction float64) float64 {
	return round1(fraction * 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
