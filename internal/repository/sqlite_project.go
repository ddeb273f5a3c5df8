package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
)

const projectColumns = `id, number, name, status, delivery_date, contract_value, factory_code,
		primary_pm_id, backup_pm_id, created_at, updated_at`

var projectOrderFields = map[string]string{
	"name":          "name",
	"number":        "number",
	"delivery_date": "delivery_date IS NULL, delivery_date",
	"created_at":    "created_at",
}

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Number,
		p.Name,
		string(p.Status),
		nullableTimeToString(p.DeliveryDate, dateLayout),
		p.ContractValue.String(),
		p.FactoryCode,
		nullableStr(p.PrimaryPMID),
		nullableStr(p.BackupPMID),
		formatTime(p.CreatedAt, time.RFC3339),
		formatTime(p.UpdatedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *SQLiteProjectRepo) List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error) {
	var w whereBuilder
	if f.FactoryCode != "" {
		w.add("factory_code = ?", f.FactoryCode)
	}
	w.in("status", stringArgs(f.Statuses))
	if f.ExcludeClosed {
		w.add("status NOT IN (?, ?, ?)",
			string(domain.ProjectCompleted), string(domain.ProjectCancelled), string(domain.ProjectWarranty))
	}
	if f.PMID != "" {
		if f.IncludeBackup {
			w.add("(primary_pm_id = ? OR backup_pm_id = ?)", f.PMID, f.PMID)
		} else {
			w.add("primary_pm_id = ?", f.PMID)
		}
	}

	query := `SELECT ` + projectColumns + ` FROM projects` + w.String() +
		orderClause(f.OrderBy, projectOrderFields, "created_at, id") + limitClause(f.Limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var (
		p                    domain.Project
		status               string
		deliveryDate         sql.NullString
		primaryPM, backupPM  sql.NullString
		createdAt, updatedAt string
	)
	err := s.Scan(&p.ID, &p.Number, &p.Name, &status, &deliveryDate, &p.ContractValue, &p.FactoryCode,
		&primaryPM, &backupPM, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	p.Status = domain.ProjectStatus(status)
	p.DeliveryDate = parseNullableTime(deliveryDate, dateLayout)
	p.PrimaryPMID = strPtr(primaryPM)
	p.BackupPMID = strPtr(backupPM)
	if p.CreatedAt, err = parseTime(createdAt, time.RFC3339); err != nil {
		return nil, fmt.Errorf("scanning project created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt, time.RFC3339); err != nil {
		return nil, fmt.Errorf("scanning project updated_at: %w", err)
	}
	return &p, nil
}
