package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
)

// SQLiteStationRepo implements StationRepo using a SQLite database.
type SQLiteStationRepo struct {
	db db.DBTX
}

func NewSQLiteStationRepo(db db.DBTX) *SQLiteStationRepo {
	return &SQLiteStationRepo{db: db}
}

func (r *SQLiteStationRepo) Create(ctx context.Context, s *domain.Station) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stations (id, factory_id, code, name, sequence) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.FactoryID, s.Code, s.Name, s.Sequence)
	if err != nil {
		return fmt.Errorf("inserting station: %w", err)
	}
	return nil
}

// ListByFactory returns stations in line order.
func (r *SQLiteStationRepo) ListByFactory(ctx context.Context, factoryID string) ([]*domain.Station, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, factory_id, code, name, sequence FROM stations WHERE factory_id = ? ORDER BY sequence, id`,
		factoryID)
	if err != nil {
		return nil, fmt.Errorf("listing stations: %w", err)
	}
	defer rows.Close()

	var stations []*domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(&s.ID, &s.FactoryID, &s.Code, &s.Name, &s.Sequence); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		stations = append(stations, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}
	return stations, nil
}

// SQLiteWorkerRepo implements WorkerRepo using a SQLite database.
type SQLiteWorkerRepo struct {
	db db.DBTX
}

func NewSQLiteWorkerRepo(db db.DBTX) *SQLiteWorkerRepo {
	return &SQLiteWorkerRepo{db: db}
}

func (r *SQLiteWorkerRepo) Create(ctx context.Context, w *domain.Worker) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workers (id, factory_id, name, primary_station_id, active, is_lead) VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.FactoryID, w.Name, nullableStr(w.PrimaryStationID), boolToInt(w.Active), boolToInt(w.Lead))
	if err != nil {
		return fmt.Errorf("inserting worker: %w", err)
	}
	return nil
}

func (r *SQLiteWorkerRepo) ListByFactory(ctx context.Context, factoryID string, activeOnly bool) ([]*domain.Worker, error) {
	query := `SELECT id, factory_id, name, primary_station_id, active, is_lead FROM workers WHERE factory_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query, factoryID)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	var workers []*domain.Worker
	for rows.Next() {
		var (
			w            domain.Worker
			primary      sql.NullString
			active, lead int
		)
		if err := rows.Scan(&w.ID, &w.FactoryID, &w.Name, &primary, &active, &lead); err != nil {
			return nil, fmt.Errorf("scanning worker: %w", err)
		}
		w.PrimaryStationID = strPtr(primary)
		w.Active = intToBool(active)
		w.Lead = intToBool(lead)
		workers = append(workers, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workers: %w", err)
	}
	return workers, nil
}

// SQLiteShiftRepo implements ShiftRepo using a SQLite database.
type SQLiteShiftRepo struct {
	db db.DBTX
}

func NewSQLiteShiftRepo(db db.DBTX) *SQLiteShiftRepo {
	return &SQLiteShiftRepo{db: db}
}

func (r *SQLiteShiftRepo) Create(ctx context.Context, s *domain.ShiftRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shift_records (id, worker_id, clock_in, clock_out, total_hours) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.WorkerID, formatTime(s.ClockIn, time.RFC3339),
		nullableTimeToString(s.ClockOut, time.RFC3339), nullableFloat(s.TotalHours))
	if err != nil {
		return fmt.Errorf("inserting shift record: %w", err)
	}
	return nil
}

func (r *SQLiteShiftRepo) ListBetween(ctx context.Context, factoryID string, from, to time.Time) ([]*domain.ShiftRecord, error) {
	query := `SELECT s.id, s.worker_id, s.clock_in, s.clock_out, s.total_hours
		FROM shift_records s
		JOIN workers w ON w.id = s.worker_id
		WHERE w.factory_id = ? AND s.clock_in >= ? AND s.clock_in <= ?
		ORDER BY s.clock_in, s.id`
	rows, err := r.db.QueryContext(ctx, query, factoryID,
		formatTime(from, time.RFC3339), formatTime(to, time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing shift records: %w", err)
	}
	defer rows.Close()

	var shifts []*domain.ShiftRecord
	for rows.Next() {
		var (
			s        domain.ShiftRecord
			clockIn  string
			clockOut sql.NullString
			total    sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.WorkerID, &clockIn, &clockOut, &total); err != nil {
			return nil, fmt.Errorf("scanning shift record: %w", err)
		}
		if s.ClockIn, err = parseTime(clockIn, time.RFC3339); err != nil {
			return nil, fmt.Errorf("scanning shift clock_in: %w", err)
		}
		s.ClockOut = parseNullableTime(clockOut, time.RFC3339)
		s.TotalHours = floatPtr(total)
		shifts = append(shifts, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shift records: %w", err)
	}
	return shifts, nil
}

// SQLiteAssignmentRepo implements AssignmentRepo. Crew ids are stored as a
// JSON array column.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

func NewSQLiteAssignmentRepo(db db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: db}
}

func (r *SQLiteAssignmentRepo) Create(ctx context.Context, a *domain.StationAssignment) error {
	crew := a.CrewIDs
	if crew == nil {
		crew = []string{}
	}
	crewJSON, err := json.Marshal(crew)
	if err != nil {
		return fmt.Errorf("encoding crew ids: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO station_assignments (id, station_id, module_id, lead_id, crew_ids, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.StationID, nullableStr(a.ModuleID), nullableStr(a.LeadID), string(crewJSON),
		formatTime(a.StartTime, time.RFC3339), nullableTimeToString(a.EndTime, time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting station assignment: %w", err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) ListOverlapping(ctx context.Context, factoryID string, from, to time.Time) ([]*domain.StationAssignment, error) {
	query := `SELECT a.id, a.station_id, a.module_id, a.lead_id, a.crew_ids, a.start_time, a.end_time
		FROM station_assignments a
		JOIN stations st ON st.id = a.station_id
		WHERE st.factory_id = ? AND a.start_time <= ? AND (a.end_time IS NULL OR a.end_time >= ?)
		ORDER BY a.start_time, a.id`
	rows, err := r.db.QueryContext(ctx, query, factoryID,
		formatTime(to, time.RFC3339), formatTime(from, time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing station assignments: %w", err)
	}
	defer rows.Close()

	var out []*domain.StationAssignment
	for rows.Next() {
		var (
			a                domain.StationAssignment
			moduleID, leadID sql.NullString
			crewJSON, start  string
			end              sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.StationID, &moduleID, &leadID, &crewJSON, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning station assignment: %w", err)
		}
		if err := json.Unmarshal([]byte(crewJSON), &a.CrewIDs); err != nil {
			return nil, fmt.Errorf("decoding crew ids of assignment %s: %w", a.ID, err)
		}
		if a.StartTime, err = parseTime(start, time.RFC3339); err != nil {
			return nil, fmt.Errorf("scanning assignment start_time: %w", err)
		}
		a.ModuleID = strPtr(moduleID)
		a.LeadID = strPtr(leadID)
		a.EndTime = parseNullableTime(end, time.RFC3339)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating station assignments: %w", err)
	}
	return out, nil
}

// SQLiteCertificationRepo implements CertificationRepo using a SQLite database.
type SQLiteCertificationRepo struct {
	db db.DBTX
}

func NewSQLiteCertificationRepo(db db.DBTX) *SQLiteCertificationRepo {
	return &SQLiteCertificationRepo{db: db}
}

func (r *SQLiteCertificationRepo) Create(ctx context.Context, c *domain.CertificationRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO certifications (id, worker_id, station_id, level, certified_at, expires_at, active,
			avg_completion_hours, rework_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.WorkerID, c.StationID, string(c.Level),
		formatTime(c.CertifiedAt, time.RFC3339), nullableTimeToString(c.ExpiresAt, time.RFC3339),
		boolToInt(c.Active), nullableFloat(c.AvgCompletionHours), nullableFloat(c.ReworkRate))
	if err != nil {
		return fmt.Errorf("inserting certification: %w", err)
	}
	return nil
}

func (r *SQLiteCertificationRepo) ListByFactory(ctx context.Context, factoryID string) ([]*domain.CertificationRecord, error) {
	query := `SELECT c.id, c.worker_id, c.station_id, c.level, c.certified_at, c.expires_at, c.active,
			c.avg_completion_hours, c.rework_rate
		FROM certifications c
		JOIN workers w ON w.id = c.worker_id
		WHERE w.factory_id = ?
		ORDER BY c.worker_id, c.station_id, c.certified_at`
	rows, err := r.db.QueryContext(ctx, query, factoryID)
	if err != nil {
		return nil, fmt.Errorf("listing certifications: %w", err)
	}
	defer rows.Close()

	var certs []*domain.CertificationRecord
	for rows.Next() {
		var (
			c                  domain.CertificationRecord
			level, certifiedAt string
			expiresAt          sql.NullString
			active             int
			avgHours, rework   sql.NullFloat64
		)
		if err := rows.Scan(&c.ID, &c.WorkerID, &c.StationID, &level, &certifiedAt, &expiresAt, &active,
			&avgHours, &rework); err != nil {
			return nil, fmt.Errorf("scanning certification: %w", err)
		}
		if c.CertifiedAt, err = parseTime(certifiedAt, time.RFC3339); err != nil {
			return nil, fmt.Errorf("scanning certification certified_at: %w", err)
		}
		c.Level = domain.CertificationLevel(level)
		c.ExpiresAt = parseNullableTime(expiresAt, time.RFC3339)
		c.Active = intToBool(active)
		c.AvgCompletionHours = floatPtr(avgHours)
		c.ReworkRate = floatPtr(rework)
		certs = append(certs, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating certifications: %w", err)
	}
	return certs, nil
}
