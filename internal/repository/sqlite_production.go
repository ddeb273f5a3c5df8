package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
)

var moduleOrderFields = map[string]string{
	"build_sequence": "build_sequence",
	"completed_at":   "completed_at",
	"serial":         "serial",
}

// SQLiteModuleRepo implements ModuleRepo using a SQLite database.
type SQLiteModuleRepo struct {
	db db.DBTX
}

func NewSQLiteModuleRepo(db db.DBTX) *SQLiteModuleRepo {
	return &SQLiteModuleRepo{db: db}
}

func (r *SQLiteModuleRepo) Create(ctx context.Context, m *domain.Module) error {
	var projectID any
	if m.ProjectID != "" {
		projectID = m.ProjectID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO modules (id, serial, project_id, factory_id, status, current_station_id,
			building_category, build_sequence, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Serial, projectID, m.FactoryID, string(m.Status), nullableStr(m.CurrentStationID),
		m.BuildingCategory, m.BuildSequence, nullableTimeToString(m.CompletedAt, time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting module: %w", err)
	}
	return nil
}

func (r *SQLiteModuleRepo) List(ctx context.Context, f ModuleFilter) ([]*domain.Module, error) {
	var w whereBuilder
	if f.FactoryID != "" {
		w.add("factory_id = ?", f.FactoryID)
	}
	w.in("status", stringArgs(f.Statuses))
	if f.CompletedFrom != nil {
		w.add("completed_at >= ?", formatTime(*f.CompletedFrom, time.RFC3339))
	}
	if f.CompletedTo != nil {
		w.add("completed_at <= ?", formatTime(*f.CompletedTo, time.RFC3339))
	}

	query := `SELECT id, serial, project_id, factory_id, status, current_station_id,
			building_category, build_sequence, completed_at
		FROM modules` + w.String() +
		orderClause(f.OrderBy, moduleOrderFields, "build_sequence, id") + limitClause(f.Limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var modules []*domain.Module
	for rows.Next() {
		var (
			m                  domain.Module
			projectID, station sql.NullString
			status             string
			completedAt        sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Serial, &projectID, &m.FactoryID, &status, &station,
			&m.BuildingCategory, &m.BuildSequence, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning module: %w", err)
		}
		m.ProjectID = projectID.String
		m.Status = domain.ModuleStatus(status)
		m.CurrentStationID = strPtr(station)
		m.CompletedAt = parseNullableTime(completedAt, time.RFC3339)
		modules = append(modules, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating modules: %w", err)
	}
	return modules, nil
}

// SQLiteTaktRepo implements TaktRepo using a SQLite database.
type SQLiteTaktRepo struct {
	db db.DBTX
}

func NewSQLiteTaktRepo(db db.DBTX) *SQLiteTaktRepo {
	return &SQLiteTaktRepo{db: db}
}

func (r *SQLiteTaktRepo) Create(ctx context.Context, e *domain.TaktEvent) error {
	var moduleID any
	if e.ModuleID != "" {
		moduleID = e.ModuleID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO takt_events (id, module_id, station_id, expected_hours, actual_hours, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, moduleID, e.StationID, e.ExpectedHours, nullableFloat(e.ActualHours),
		formatTime(e.CompletedAt, time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting takt event: %w", err)
	}
	return nil
}

func (r *SQLiteTaktRepo) ListBetween(ctx context.Context, factoryID string, from, to time.Time) ([]*domain.TaktEvent, error) {
	query := `SELECT t.id, t.module_id, t.station_id, t.expected_hours, t.actual_hours, t.completed_at
		FROM takt_events t
		JOIN stations st ON st.id = t.station_id
		WHERE st.factory_id = ? AND t.completed_at >= ? AND t.completed_at <= ?
		ORDER BY t.completed_at, t.id`
	rows, err := r.db.QueryContext(ctx, query, factoryID,
		formatTime(from, time.RFC3339), formatTime(to, time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing takt events: %w", err)
	}
	defer rows.Close()

	var events []*domain.TaktEvent
	for rows.Next() {
		var (
			e           domain.TaktEvent
			moduleID    sql.NullString
			actual      sql.NullFloat64
			completedAt string
		)
		if err := rows.Scan(&e.ID, &moduleID, &e.StationID, &e.ExpectedHours, &actual, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning takt event: %w", err)
		}
		if e.CompletedAt, err = parseTime(completedAt, time.RFC3339); err != nil {
			return nil, fmt.Errorf("scanning takt completed_at: %w", err)
		}
		e.ModuleID = moduleID.String
		e.ActualHours = floatPtr(actual)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating takt events: %w", err)
	}
	return events, nil
}

// SQLiteQCRepo implements QCRepo. Listings join modules for serial and
// building category.
type SQLiteQCRepo struct {
	db db.DBTX
}

func NewSQLiteQCRepo(db db.DBTX) *SQLiteQCRepo {
	return &SQLiteQCRepo{db: db}
}

func (r *SQLiteQCRepo) Create(ctx context.Context, q *domain.QCRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO qc_records (id, module_id, station_id, inspected_at, passed, rework_required,
			rework_completed_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.ModuleID, q.StationID, formatTime(q.InspectedAt, time.RFC3339),
		boolToInt(q.Passed), boolToInt(q.ReworkRequired),
		nullableTimeToString(q.ReworkCompletedAt, time.RFC3339), q.Notes)
	if err != nil {
		return fmt.Errorf("inserting qc record: %w", err)
	}
	return nil
}

func (r *SQLiteQCRepo) List(ctx context.Context, f QCFilter) ([]*domain.QCRecord, error) {
	var w whereBuilder
	if f.FactoryID != "" {
		w.add("m.factory_id = ?", f.FactoryID)
	}
	if f.StationID != "" {
		w.add("q.station_id = ?", f.StationID)
	}
	if f.From != nil {
		w.add("q.inspected_at >= ?", formatTime(*f.From, time.RFC3339))
	}
	if f.To != nil {
		w.add("q.inspected_at <= ?", formatTime(*f.To, time.RFC3339))
	}
	if f.ReworkOnly {
		w.add("q.rework_required = 1")
	}

	query := `SELECT q.id, q.module_id, m.serial, q.station_id, q.inspected_at, q.passed,
			q.rework_required, q.rework_completed_at, m.building_category, q.notes
		FROM qc_records q
		JOIN modules m ON m.id = q.module_id` + w.String() +
		` ORDER BY q.inspected_at, q.id` + limitClause(f.Limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing qc records: %w", err)
	}
	defer rows.Close()

	var records []*domain.QCRecord
	for rows.Next() {
		var (
			q               domain.QCRecord
			inspectedAt     string
			passed, rework  int
			reworkCompleted sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.ModuleID, &q.ModuleSerial, &q.StationID, &inspectedAt, &passed,
			&rework, &reworkCompleted, &q.BuildingCategory, &q.Notes); err != nil {
			return nil, fmt.Errorf("scanning qc record: %w", err)
		}
		if q.InspectedAt, err = parseTime(inspectedAt, time.RFC3339); err != nil {
			return nil, fmt.Errorf("scanning qc inspected_at: %w", err)
		}
		q.Passed = intToBool(passed)
		q.ReworkRequired = intToBool(rework)
		q.ReworkCompletedAt = parseNullableTime(reworkCompleted, time.RFC3339)
		records = append(records, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating qc records: %w", err)
	}
	return records, nil
}
