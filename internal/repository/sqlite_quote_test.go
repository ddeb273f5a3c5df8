package repository

import (
	"context"
	"testing"
	"time"

	"github.com/modbuild/pulse/internal/domain"
	"github.com/modbuild/pulse/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRepo_RoundTrip(t *testing.T) {
	repo := NewSQLiteQuoteRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	closeDate := time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
	q := testutil.NewTestQuote(domain.QuoteNegotiating, 0,
		testutil.WithOutlook(75),
		testutil.WithCloseDate(closeDate),
		testutil.WithTimeframe("next month"),
		testutil.WithQuoteFactory("NWBS"),
	)
	q.TotalPrice = decimal.RequireFromString("845000.25")
	q.PMFlagged = true
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.List(ctx, QuoteFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	g := got[0]
	assert.Equal(t, domain.QuoteNegotiating, g.Status)
	assert.True(t, q.TotalPrice.Equal(g.TotalPrice))
	require.NotNil(t, g.OutlookPercentage)
	assert.Equal(t, 75, *g.OutlookPercentage)
	require.NotNil(t, g.ExpectedCloseDate)
	assert.True(t, closeDate.Equal(*g.ExpectedCloseDate))
	assert.Equal(t, "next month", g.ExpectedCloseTimeframe)
	assert.True(t, g.PMFlagged)
	assert.Nil(t, g.ConvertedAt)
}

func TestQuoteRepo_ListFilters(t *testing.T) {
	repo := NewSQLiteQuoteRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	small := testutil.NewTestQuote(domain.QuoteSent, 1000, testutil.WithQuoteFactory("NWBS"))
	big := testutil.NewTestQuote(domain.QuoteSent, 90000, testutil.WithQuoteFactory("NWBS"))
	won := testutil.NewTestQuote(domain.QuoteWon, 5000, testutil.WithQuoteFactory("WM"))
	for _, q := range []*domain.SalesQuote{small, big, won} {
		require.NoError(t, repo.Create(ctx, q))
	}

	nwbs, err := repo.List(ctx, QuoteFilter{FactoryCode: "NWBS", OrderBy: "-total_price"})
	require.NoError(t, err)
	require.Len(t, nwbs, 2)
	assert.Equal(t, big.ID, nwbs[0].ID)

	wonOnly, err := repo.List(ctx, QuoteFilter{Statuses: []domain.QuoteStatus{domain.QuoteWon}})
	require.NoError(t, err)
	require.Len(t, wonOnly, 1)
	assert.Equal(t, won.ID, wonOnly[0].ID)
}
