package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
)

const factoryColumns = `id, code, name, shift_start, shift_end, break_minutes, lunch_minutes, target_daily_throughput`

// SQLiteFactoryRepo stores factories together with their plant time configuration.
type SQLiteFactoryRepo struct {
	db db.DBTX
}

func NewSQLiteFactoryRepo(db db.DBTX) *SQLiteFactoryRepo {
	return &SQLiteFactoryRepo{db: db}
}

func (r *SQLiteFactoryRepo) Create(ctx context.Context, f *domain.Factory) error {
	plant := f.Plant
	if plant.ShiftStart == "" || plant.ShiftEnd == "" {
		plant = domain.DefaultPlantConfig(f.ID)
	}
	query := `INSERT INTO factories (` + factoryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Code, f.Name,
		plant.ShiftStart, plant.ShiftEnd, plant.BreakMinutes, plant.LunchMinutes, plant.TargetDailyThroughput,
	)
	if err != nil {
		return fmt.Errorf("inserting factory: %w", err)
	}
	plant.FactoryID = f.ID
	f.Plant = plant
	return nil
}

func (r *SQLiteFactoryRepo) GetByID(ctx context.Context, id string) (*domain.Factory, error) {
	return r.getOne(ctx, `SELECT `+factoryColumns+` FROM factories WHERE id = ?`, id)
}

func (r *SQLiteFactoryRepo) GetByCode(ctx context.Context, code string) (*domain.Factory, error) {
	return r.getOne(ctx, `SELECT `+factoryColumns+` FROM factories WHERE UPPER(code) = UPPER(?)`, code)
}

func (r *SQLiteFactoryRepo) getOne(ctx context.Context, query, key string) (*domain.Factory, error) {
	f, err := scanFactory(r.db.QueryRowContext(ctx, query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("factory %s: %w", key, ErrNotFound)
	}
	return f, err
}

func (r *SQLiteFactoryRepo) List(ctx context.Context) ([]*domain.Factory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+factoryColumns+` FROM factories ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("listing factories: %w", err)
	}
	defer rows.Close()

	var factories []*domain.Factory
	for rows.Next() {
		f, err := scanFactory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning factory: %w", err)
		}
		factories = append(factories, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating factories: %w", err)
	}
	return factories, nil
}

func scanFactory(s rowScanner) (*domain.Factory, error) {
	var f domain.Factory
	err := s.Scan(&f.ID, &f.Code, &f.Name,
		&f.Plant.ShiftStart, &f.Plant.ShiftEnd, &f.Plant.BreakMinutes, &f.Plant.LunchMinutes,
		&f.Plant.TargetDailyThroughput)
	if err != nil {
		return nil, err
	}
	f.Plant.FactoryID = f.ID
	return &f, nil
}

// SQLiteTeamMemberRepo implements TeamMemberRepo using a SQLite database.
type SQLiteTeamMemberRepo struct {
	db db.DBTX
}

func NewSQLiteTeamMemberRepo(db db.DBTX) *SQLiteTeamMemberRepo {
	return &SQLiteTeamMemberRepo{db: db}
}

func (r *SQLiteTeamMemberRepo) Create(ctx context.Context, m *domain.TeamMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO team_members (id, name, role, email, active) VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Role, m.Email, boolToInt(m.Active))
	if err != nil {
		return fmt.Errorf("inserting team member: %w", err)
	}
	return nil
}

func (r *SQLiteTeamMemberRepo) GetByID(ctx context.Context, id string) (*domain.TeamMember, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, role, email, active FROM team_members WHERE id = ?`, id)
	m, err := scanTeamMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team member %s: %w", id, ErrNotFound)
	}
	return m, err
}

func (r *SQLiteTeamMemberRepo) List(ctx context.Context, activeOnly bool) ([]*domain.TeamMember, error) {
	query := `SELECT id, name, role, email, active FROM team_members`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var members []*domain.TeamMember
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning team member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team members: %w", err)
	}
	return members, nil
}

func scanTeamMember(s rowScanner) (*domain.TeamMember, error) {
	var m domain.TeamMember
	var active int
	if err := s.Scan(&m.ID, &m.Name, &m.Role, &m.Email, &active); err != nil {
		return nil, err
	}
	m.Active = intToBool(active)
	return &m, nil
}
