package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
)

const quoteColumns = `id, number, version, customer_name, factory_code, status, total_price,
		outlook_percentage, expected_close_timeframe, expected_close_date, pm_flagged,
		converted_at, converted_project_id, created_at`

var quoteOrderFields = map[string]string{
	"created_at":          "created_at",
	"number":              "number, version",
	"expected_close_date": "expected_close_date IS NULL, expected_close_date",
	"total_price":         "CAST(total_price AS REAL)",
}

// SQLiteQuoteRepo implements QuoteRepo using a SQLite database. Prices are
// stored as decimal strings.
type SQLiteQuoteRepo struct {
	db db.DBTX
}

func NewSQLiteQuoteRepo(db db.DBTX) *SQLiteQuoteRepo {
	return &SQLiteQuoteRepo{db: db}
}

func (r *SQLiteQuoteRepo) Create(ctx context.Context, q *domain.SalesQuote) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	version := q.Version
	if version <= 0 {
		version = 1
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO sales_quotes (`+quoteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.Number, version, q.CustomerName, q.FactoryCode, string(q.Status), q.TotalPrice.String(),
		nullableIntToValue(q.OutlookPercentage), q.ExpectedCloseTimeframe,
		nullableTimeToString(q.ExpectedCloseDate, dateLayout), boolToInt(q.PMFlagged),
		nullableTimeToString(q.ConvertedAt, time.RFC3339), nullableStr(q.ConvertedProjectID),
		formatTime(q.CreatedAt, time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting sales quote: %w", err)
	}
	return nil
}

func (r *SQLiteQuoteRepo) List(ctx context.Context, f QuoteFilter) ([]*domain.SalesQuote, error) {
	var w whereBuilder
	if f.FactoryCode != "" {
		w.add("factory_code = ?", f.FactoryCode)
	}
	w.in("status", stringArgs(f.Statuses))

	query := `SELECT ` + quoteColumns + ` FROM sales_quotes` + w.String() +
		orderClause(f.OrderBy, quoteOrderFields, "created_at, id") + limitClause(f.Limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.SalesQuote
	for rows.Next() {
		var (
			q                domain.SalesQuote
			status           string
			outlook          sql.NullInt64
			closeDate        sql.NullString
			flagged          int
			convertedAt      sql.NullString
			convertedProject sql.NullString
			createdAt        string
		)
		if err := rows.Scan(&q.ID, &q.Number, &q.Version, &q.CustomerName, &q.FactoryCode, &status,
			&q.TotalPrice, &outlook, &q.ExpectedCloseTimeframe, &closeDate, &flagged,
			&convertedAt, &convertedProject, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sales quote: %w", err)
		}
		if q.CreatedAt, err = parseTime(createdAt, time.RFC3339); err != nil {
			return nil, fmt.Errorf("scanning quote created_at: %w", err)
		}
		q.Status = domain.QuoteStatus(status)
		q.OutlookPercentage = intPtr(outlook)
		q.ExpectedCloseDate = parseNullableTime(closeDate, dateLayout)
		q.PMFlagged = intToBool(flagged)
		q.ConvertedAt = parseNullableTime(convertedAt, time.RFC3339)
		q.ConvertedProjectID = strPtr(convertedProject)
		quotes = append(quotes, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales quotes: %w", err)
	}
	return quotes, nil
}
