package metrics

import (
	"testing"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestClassify_NoOverdueNoDeadline_OnTrack(t *testing.T) {
	assert.Equal(t, domain.HealthOnTrack, Classify(0, nil))
}

func TestClassify_ThreeOverdue_AlwaysCritical(t *testing.T) {
	deadlines := []*int{nil, intPtr(-10), intPtr(0), intPtr(5), intPtr(365)}
	for overdue := CriticalOverdueCount; overdue < 10; overdue++ {
		for _, d := range deadlines {
			assert.Equal(t, domain.HealthCritical, Classify(overdue, d), "overdue=%d", overdue)
		}
	}
}

func TestClassify_DeadlineWindows(t *testing.T) {
	cases := []struct {
		days int
		want domain.HealthState
	}{
		{0, domain.HealthCritical},
		{3, domain.HealthCritical},
		{4, domain.HealthAtRisk},
		{7, domain.HealthAtRisk},
		{8, domain.HealthOnTrack},
		{-1, domain.HealthOnTrack},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(0, intPtr(tc.days)), "days=%d", tc.days)
	}
}

func TestClassify_SomeOverdue_AtRisk(t *testing.T) {
	assert.Equal(t, domain.HealthAtRisk, Classify(1, nil))
	assert.Equal(t, domain.HealthAtRisk, Classify(2, intPtr(30)))
}

func TestHealthPriority_Order(t *testing.T) {
	assert.Less(t, HealthPriority(domain.HealthCritical), HealthPriority(domain.HealthAtRisk))
	assert.Less(t, HealthPriority(domain.HealthAtRisk), HealthPriority(domain.HealthOnTrack))
}
