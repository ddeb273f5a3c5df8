package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultOutlookPercentage = 50
	RecentConversionDays     = 30
)

// BucketSource records how a quote was placed in a forecast window.
type BucketSource string

const (
	BucketFromDate    BucketSource = "close_date"
	BucketFromKeyword BucketSource = "timeframe_keyword"
	BucketNone        BucketSource = "none"
)

// Legacy keyword table for quotes that only carry free-text timeframes.
// Checked in order; the first window with a matching keyword wins.
var timeframeKeywords = []struct {
	days     int
	keywords []string
}{
	{30, []string{"week", "30", "asap", "immediate", "this month"}},
	{60, []string{"60", "two months", "2 months", "next month"}},
	{90, []string{"90", "quarter", "3 months", "three months"}},
}

type ForecastBucket struct {
	Days          int             `json:"days"`
	Count         int             `json:"count"`
	Value         decimal.Decimal `json:"value"`
	WeightedValue decimal.Decimal `json:"weighted_value"`
}

type StatusSummary struct {
	Status domain.QuoteStatus `json:"status"`
	Count  int                `json:"count"`
	Value  decimal.Decimal    `json:"value"`
}

type ConvertedQuote struct {
	QuoteID            string          `json:"quote_id"`
	Number             string          `json:"number"`
	CustomerName       string          `json:"customer_name"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ConvertedAt        time.Time       `json:"converted_at"`
	ConvertedProjectID *string         `json:"converted_project_id"`
	DaysAgo            int             `json:"days_ago"`
}

type PipelineForecast struct {
	GeneratedAt           time.Time        `json:"generated_at"`
	QuoteCount            int              `json:"quote_count"`
	ActiveCount           int              `json:"active_count"`
	PipelineValue         decimal.Decimal  `json:"pipeline_value"`
	WeightedPipelineValue decimal.Decimal  `json:"weighted_pipeline_value"`
	WonCount              int              `json:"won_count"`
	LostCount             int              `json:"lost_count"`
	WinRate               float64          `json:"win_rate"`
	Next30                ForecastBucket   `json:"next_30"`
	Next60                ForecastBucket   `json:"next_60"`
	Next90                ForecastBucket   `json:"next_90"`
	Unbucketed            int              `json:"unbucketed"`
	PMFlaggedCount        int              `json:"pm_flagged_count"`
	ByStatus              []StatusSummary  `json:"by_status"`
	RecentlyConverted     []ConvertedQuote `json:"recently_converted"`
}

// ForecastPipeline values the open pipeline, weights it by estimator
// outlook and places each active quote in a 30/60/90-day window. Windows are
// cumulative: Next60 includes everything in Next30.
func ForecastPipeline(quotes []domain.SalesQuote, now time.Time) PipelineForecast {
	f := PipelineForecast{
		GeneratedAt:           now,
		QuoteCount:            len(quotes),
		PipelineValue:         decimal.Zero,
		WeightedPipelineValue: decimal.Zero,
		Next30:                ForecastBucket{Days: 30, Value: decimal.Zero, WeightedValue: decimal.Zero},
		Next60:                ForecastBucket{Days: 60, Value: decimal.Zero, WeightedValue: decimal.Zero},
		Next90:                ForecastBucket{Days: 90, Value: decimal.Zero, WeightedValue: decimal.Zero},
	}

	byStatus := map[domain.QuoteStatus]*StatusSummary{}
	for i := range quotes {
		q := &quotes[i]
		price := quotePrice(q)

		s := byStatus[q.Status]
		if s == nil {
			s = &StatusSummary{Status: q.Status, Value: decimal.Zero}
			byStatus[q.Status] = s
		}
		s.Count++
		s.Value = s.Value.Add(price)

		switch q.Status {
		case domain.QuoteWon:
			f.WonCount++
		case domain.QuoteLost:
			f.LostCount++
		}
		if q.PMFlagged {
			f.PMFlaggedCount++
		}
		if c, ok := recentConversion(q, now); ok {
			f.RecentlyConverted = append(f.RecentlyConverted, c)
		}

		if !q.Status.IsActive() {
			continue
		}
		f.ActiveCount++
		weighted := WeightedValue(q)
		f.PipelineValue = f.PipelineValue.Add(price)
		f.WeightedPipelineValue = f.WeightedPipelineValue.Add(weighted)

		days, _ := ForecastWindow(q, now)
		if days == 0 {
			f.Unbucketed++
			continue
		}
		for _, b := range []*ForecastBucket{&f.Next30, &f.Next60, &f.Next90} {
			if days <= b.Days {
				b.Count++
				b.Value = b.Value.Add(price)
				b.WeightedValue = b.WeightedValue.Add(weighted)
			}
		}
	}

	if closed := f.WonCount + f.LostCount; closed > 0 {
		f.WinRate = round1(float64(f.WonCount) / float64(closed) * 100)
	}

	for _, st := range quoteStatusOrder {
		if s, ok := byStatus[st]; ok {
			f.ByStatus = append(f.ByStatus, *s)
			delete(byStatus, st)
		}
	}
	var unknown []domain.QuoteStatus
	for st := range byStatus {
		unknown = append(unknown, st)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, st := range unknown {
		f.ByStatus = append(f.ByStatus, *byStatus[st])
	}

	sort.SliceStable(f.RecentlyConverted, func(i, j int) bool {
		return f.RecentlyConverted[i].ConvertedAt.After(f.RecentlyConverted[j].ConvertedAt)
	})
	return f
}

var quoteStatusOrder = []domain.QuoteStatus{
	domain.QuoteDraft, domain.QuoteSent, domain.QuoteNegotiating, domain.QuoteAwaitingPO,
	domain.QuotePOReceived, domain.QuoteWon, domain.QuoteLost, domain.QuoteExpired, domain.QuoteConverted,
}

// quotePrice treats negative totals as malformed and values them at zero.
func quotePrice(q *domain.SalesQuote) decimal.Decimal {
	if q.TotalPrice.IsNegative() {
		return decimal.Zero
	}
	return q.TotalPrice
}

// Outlook returns the quote's close confidence clamped to [0,100],
// defaulting to 50 when unset.
func Outlook(q *domain.SalesQuote) int {
	o := domain.IntFromPtrWithDefault(DefaultOutlookPercentage, q.OutlookPercentage)
	return int(clamp(float64(o), 0, 100))
}

// WeightedValue is price x outlook/100.
func WeightedValue(q *domain.SalesQuote) decimal.Decimal {
	return quotePrice(q).Mul(decimal.NewFromInt(int64(Outlook(q)))).Div(decimal.NewFromInt(100))
}

// ForecastWindow returns the smallest window (30, 60 or 90 days) the quote
// is expected to close in, or 0 when it cannot be placed. A structured close
// date wins; past-due close dates land in the 30-day window. The free-text
// timeframe is only consulted for legacy quotes without a date.
func ForecastWindow(q *domain.SalesQuote, now time.Time) (int, BucketSource) {
	if q.ExpectedCloseDate != nil {
		days := DaysUntil(*q.ExpectedCloseDate, now)
		switch {
		case days <= 30:
			return 30, BucketFromDate
		case days <= 60:
			return 60, BucketFromDate
		case days <= 90:
			return 90, BucketFromDate
		default:
			return 0, BucketNone
		}
	}

	text := strings.ToLower(strings.TrimSpace(q.ExpectedCloseTimeframe))
	if text == "" {
		return 0, BucketNone
	}
	for _, w := range timeframeKeywords {
		for _, kw := range w.keywords {
			if containsKeyword(text, kw) {
				return w.days, BucketFromKeyword
			}
		}
	}
	return 0, BucketNone
}

// containsKeyword reports whether kw occurs in text. A keyword that starts
// or ends with a digit must not touch another digit, so "30" matches
// "30 days" but not "2030" or "130 days".
func containsKeyword(text, kw string) bool {
	for from := 0; from <= len(text)-len(kw); {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return false
		}
		start, end := from+i, from+i+len(kw)
		before := start > 0 && isDigit(kw[0]) && isDigit(text[start-1])
		after := end < len(text) && isDigit(kw[len(kw)-1]) && isDigit(text[end])
		if !before && !after {
			return true
		}
		from = start + 1
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func recentConversion(q *domain.SalesQuote, now time.Time) (ConvertedQuote, bool) {
	if q.ConvertedAt == nil {
		return ConvertedQuote{}, false
	}
	age := now.Sub(*q.ConvertedAt)
	if age < 0 || age > RecentConversionDays*24*time.Hour {
		return ConvertedQuote{}, false
	}
	return ConvertedQuote{
		QuoteID:            q.ID,
		Number:             q.Number,
		CustomerName:       q.CustomerName,
		TotalPrice:         quotePrice(q),
		ConvertedAt:        *q.ConvertedAt,
		ConvertedProjectID: q.ConvertedProjectID,
		DaysAgo:            int(age.Hours() / 24),
	}, true
}

// LatestVersions keeps the highest version of each quote number. Quotes
// without a number are kept as-is. Output order follows first appearance.
func LatestVersions(quotes []domain.SalesQuote) []domain.SalesQuote {
	index := map[string]int{}
	var out []domain.SalesQuote
	for _, q := range quotes {
		key := domain.CoalesceStr(q.Number, "id:"+q.ID)
		if i, ok := index[key]; ok {
			if q.Version > out[i].Version {
				out[i] = q
			}
			continue
		}
		index[key] = len(out)
		out = append(out, q)
	}
	return out
}
