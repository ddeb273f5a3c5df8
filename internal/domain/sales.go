package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalesQuote struct {
	ID           string          `json:"id"`
	Number       string          `json:"number"`
	Version      int             `json:"version"`
	CustomerName string          `json:"customer_name"`
	FactoryCode  string          `json:"factory_code"`
	Status       QuoteStatus     `json:"status"`
	TotalPrice   decimal.Decimal `json:"total_price"`

	// OutlookPercentage is the estimator's 0-100 close confidence; nil when
	// not yet estimated.
	OutlookPercentage *int `json:"outlook_percentage"`

	// ExpectedCloseTimeframe is free text kept for legacy quotes.
	// ExpectedCloseDate supersedes it when set.
	ExpectedCloseTimeframe string     `json:"expected_close_timeframe"`
	ExpectedCloseDate      *time.Time `json:"expected_close_date"`

	PMFlagged          bool       `json:"pm_flagged"`
	ConvertedAt        *time.Time `json:"converted_at"`
	ConvertedProjectID *string    `json:"converted_project_id"`
	CreatedAt          time.Time  `json:"created_at"`
}
