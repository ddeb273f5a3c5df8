package metrics

import (
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestForecastPipeline_Values(t *testing.T) {
	quotes := []domain.SalesQuote{
		{ID: "q-1", Status: domain.QuoteSent, TotalPrice: price(100000), OutlookPercentage: intPtr(80)},
		{ID: "q-2", Status: domain.QuoteNegotiating, TotalPrice: price(200000)},
		{ID: "q-3", Status: domain.QuoteWon, TotalPrice: price(500000)},
		{ID: "q-4", Status: domain.QuoteLost, TotalPrice: price(50000)},
		{ID: "q-5", Status: domain.QuoteWon, TotalPrice: price(75000)},
		{ID: "q-6", Status: domain.QuoteExpired, TotalPrice: price(10000), PMFlagged: true},
	}

	f := ForecastPipeline(quotes, testNow)

	assert.True(t, f.PipelineValue.Equal(price(300000)), "got %s", f.PipelineValue)
	// 100k*0.8 + 200k*0.5 (default outlook)
	assert.True(t, f.WeightedPipelineValue.Equal(price(180000)), "got %s", f.WeightedPipelineValue)
	assert.Equal(t, 2, f.ActiveCount)
	assert.Equal(t, 2, f.WonCount)
	assert.Equal(t, 1, f.LostCount)
	assert.Equal(t, 66.7, f.WinRate)
	assert.Equal(t, 1, f.PMFlaggedCount)

	require.Len(t, f.ByStatus, 5)
	assert.Equal(t, domain.QuoteSent, f.ByStatus[0].Status)
	assert.Equal(t, domain.QuoteWon, f.ByStatus[2].Status)
	assert.Equal(t, 2, f.ByStatus[2].Count)
	assert.True(t, f.ByStatus[2].Value.Equal(price(575000)))
}

func TestForecastPipeline_NoClosedQuotes_WinRateZero(t *testing.T) {
	f := ForecastPipeline([]domain.SalesQuote{{Status: domain.QuoteDraft, TotalPrice: price(1)}}, testNow)
	assert.Equal(t, 0.0, f.WinRate)
}

func TestForecastWindow_StructuredDate(t *testing.T) {
	cases := []struct {
		offset int
		want   int
	}{
		{-5, 30},
		{10, 30},
		{45, 60},
		{80, 90},
		{120, 0},
	}
	for _, tc := range cases {
		q := &domain.SalesQuote{ExpectedCloseDate: dayOffset(tc.offset), ExpectedCloseTimeframe: "asap"}
		days, source := ForecastWindow(q, testNow)
		assert.Equal(t, tc.want, days, "offset=%d", tc.offset)
		if tc.want > 0 {
			assert.Equal(t, BucketFromDate, source)
		}
	}
}

func TestForecastWindow_LegacyKeywords(t *testing.T) {
	cases := map[string]int{
		"Within 2 weeks":   30,
		"ASAP":             30,
		"30 days":          30,
		"60-day close":     60,
		"Two months out":   60,
		"next quarter":     90,
		"90 days":          90,
		"(30d)":            30,
		"Q1 2030":          0,
		"130 days":         0,
		"by 2060":          0,
		"after permitting": 0,
		"":                 0,
	}
	for text, want := range cases {
		days, _ := ForecastWindow(&domain.SalesQuote{ExpectedCloseTimeframe: text}, testNow)
		assert.Equal(t, want, days, "timeframe=%q", text)
	}
}

func TestForecastPipeline_BucketsAreCumulative(t *testing.T) {
	quotes := []domain.SalesQuote{
		{Status: domain.QuoteSent, TotalPrice: price(100), OutlookPercentage: intPtr(100), ExpectedCloseTimeframe: "this week"},
		{Status: domain.QuoteSent, TotalPrice: price(200), OutlookPercentage: intPtr(50), ExpectedCloseDate: dayOffset(50)},
		{Status: domain.QuoteSent, TotalPrice: price(400), OutlookPercentage: intPtr(25), ExpectedCloseTimeframe: "one quarter"},
		{Status: domain.QuoteSent, TotalPrice: price(800), ExpectedCloseTimeframe: "TBD"},
		{Status: domain.QuoteWon, TotalPrice: price(1600), ExpectedCloseTimeframe: "asap"},
	}

	f := ForecastPipeline(quotes, testNow)

	assert.Equal(t, 1, f.Next30.Count)
	assert.True(t, f.Next30.Value.Equal(price(100)))
	assert.Equal(t, 2, f.Next60.Count)
	assert.True(t, f.Next60.WeightedValue.Equal(price(200)))
	assert.Equal(t, 3, f.Next90.Count)
	assert.True(t, f.Next90.Value.Equal(price(700)))
	assert.Equal(t, 1, f.Unbucketed)
}

func TestForecastPipeline_RecentlyConverted(t *testing.T) {
	fiveDaysAgo := testNow.Add(-5*24*time.Hour - time.Hour)
	twoDaysAgo := testNow.Add(-2 * 24 * time.Hour)
	longAgo := testNow.AddDate(0, -2, 0)
	quotes := []domain.SalesQuote{
		{ID: "a", Status: domain.QuoteConverted, ConvertedAt: &fiveDaysAgo},
		{ID: "b", Status: domain.QuoteConverted, ConvertedAt: &twoDaysAgo},
		{ID: "c", Status: domain.QuoteConverted, ConvertedAt: &longAgo},
	}

	f := ForecastPipeline(quotes, testNow)

	require.Len(t, f.RecentlyConverted, 2)
	assert.Equal(t, "b", f.RecentlyConverted[0].QuoteID)
	assert.Equal(t, 2, f.RecentlyConverted[0].DaysAgo)
	assert.Equal(t, 5, f.RecentlyConverted[1].DaysAgo)
}

func TestOutlook_DefaultAndClamp(t *testing.T) {
	assert.Equal(t, 50, Outlook(&domain.SalesQuote{}))
	assert.Equal(t, 100, Outlook(&domain.SalesQuote{OutlookPercentage: intPtr(140)}))
	assert.Equal(t, 0, Outlook(&domain.SalesQuote{OutlookPercentage: intPtr(-5)}))
}

func TestWeightedValue_NegativePriceIsZero(t *testing.T) {
	assert.True(t, WeightedValue(&domain.SalesQuote{TotalPrice: price(-500)}).IsZero())
}

func TestLatestVersions(t *testing.T) {
	quotes := []domain.SalesQuote{
		{ID: "1", Number: "Q-100", Version: 1},
		{ID: "2", Number: "Q-200", Version: 1},
		{ID: "3", Number: "Q-100", Version: 3},
		{ID: "4", Number: "Q-100", Version: 2},
		{ID: "5"},
	}
	latest := LatestVersions(quotes)
	require.Len(t, latest, 3)
	assert.Equal(t, "3", latest[0].ID)
	assert.Equal(t, "2", latest[1].ID)
	assert.Equal(t, "5", latest[2].ID)
}
