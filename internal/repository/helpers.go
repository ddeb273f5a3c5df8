package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned (wrapped) by single-record lookups that match nothing.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// parseTime parses a required timestamp column.
func parseTime(s string, layout string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return t, nil
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Timestamps are stored in UTC so range filters compare lexically.
func nullableTimeToString(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return formatTime(*t, layout)
}

func formatTime(t time.Time, layout string) string {
	if layout == dateLayout {
		return t.Format(layout)
	}
	return t.UTC().Format(layout)
}

func nullableStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableIntToValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs widens a typed string slice to query arguments.
func stringArgs[S ~string](vals []S) []any {
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = string(v)
	}
	return args
}

// whereBuilder accumulates AND-ed conditions and their arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) in(column string, args []any) {
	if len(args) == 0 {
		return
	}
	w.add(fmt.Sprintf("%s IN (%s)", column, placeholders(len(args))), args...)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// orderClause resolves a caller-facing field name against the columns a
// query allows ordering by. Unknown names fall back to def. A leading "-"
// sorts descending.
func orderClause(field string, allowed map[string]string, def string) string {
	desc := strings.HasPrefix(field, "-")
	col, ok := allowed[strings.TrimPrefix(field, "-")]
	if !ok {
		return " ORDER BY " + def
	}
	if desc {
		return " ORDER BY " + col + " DESC"
	}
	return " ORDER BY " + col
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}
