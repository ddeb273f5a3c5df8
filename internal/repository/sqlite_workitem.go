package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/modbuild/pulse/internal/db"
	"github.com/modbuild/pulse/internal/domain"
)

// workItemColumnsJoined selects a work item with its owning project's reference.
const workItemColumnsJoined = `w.id, w.kind, w.project_id, w.title, w.status, w.due_date, w.assignee_id,
		w.created_at, w.updated_at,
		p.number, p.name, p.primary_pm_id`

var workItemOrderFields = map[string]string{
	"due_date":   "w.due_date IS NULL, w.due_date",
	"created_at": "w.created_at",
	"title":      "w.title",
}

// SQLiteWorkItemRepo stores tasks, RFIs and submittals in one table keyed by kind.
type SQLiteWorkItemRepo struct {
	db db.DBTX
}

func NewSQLiteWorkItemRepo(db db.DBTX) *SQLiteWorkItemRepo {
	return &SQLiteWorkItemRepo{db: db}
}

func (r *SQLiteWorkItemRepo) Create(ctx context.Context, w *domain.WorkItem) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = w.CreatedAt
	}
	query := `INSERT INTO work_items (id, kind, project_id, title, status, due_date, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		string(w.Kind),
		w.ProjectID,
		w.Title,
		w.Status,
		nullableTimeToString(w.DueDate, dateLayout),
		nullableStr(w.AssigneeID),
		formatTime(w.CreatedAt, time.RFC3339),
		formatTime(w.UpdatedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", w.Kind, err)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) ListByProject(ctx context.Context, projectID string, kind domain.WorkItemKind) ([]*domain.WorkItem, error) {
	return r.List(ctx, WorkItemFilter{
		ProjectIDs: []string{projectID},
		Kinds:      []domain.WorkItemKind{kind},
	})
}

func (r *SQLiteWorkItemRepo) List(ctx context.Context, f WorkItemFilter) ([]*domain.WorkItem, error) {
	var w whereBuilder
	w.in("w.project_id", stringArgs(f.ProjectIDs))
	w.in("w.kind", stringArgs(f.Kinds))
	if f.AssigneeID != "" {
		w.add("w.assignee_id = ?", f.AssigneeID)
	}
	if f.ExcludeTerminal {
		cond, args := terminalCondition()
		w.add("NOT "+cond, args...)
	}

	query := `SELECT ` + workItemColumnsJoined + `
		FROM work_items w
		JOIN projects p ON p.id = w.project_id` + w.String() +
		orderClause(f.OrderBy, workItemOrderFields, "w.created_at, w.id") + limitClause(f.Limit)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing work items: %w", err)
	}
	defer rows.Close()

	var items []*domain.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work items: %w", err)
	}
	return items, nil
}

// terminalCondition matches any work item sitting in its kind's terminal status set.
func terminalCondition() (string, []any) {
	var parts []string
	var args []any
	for _, kind := range []domain.WorkItemKind{domain.KindTask, domain.KindRFI, domain.KindSubmittal} {
		statuses := domain.TerminalStatuses(kind)
		parts = append(parts, fmt.Sprintf("(w.kind = ? AND w.status IN (%s))", placeholders(len(statuses))))
		args = append(args, string(kind))
		args = append(args, stringArgs(statuses)...)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func scanWorkItem(s rowScanner) (*domain.WorkItem, error) {
	var (
		w                    domain.WorkItem
		kind                 string
		dueDate, assigneeID  sql.NullString
		createdAt, updatedAt string
		ref                  domain.ProjectRef
		primaryPM            sql.NullString
	)
	err := s.Scan(&w.ID, &kind, &w.ProjectID, &w.Title, &w.Status, &dueDate, &assigneeID,
		&createdAt, &updatedAt, &ref.Number, &ref.Name, &primaryPM)
	if err != nil {
		return nil, fmt.Errorf("scanning work item: %w", err)
	}
	w.Kind = domain.WorkItemKind(kind)
	w.DueDate = parseNullableTime(dueDate, dateLayout)
	w.AssigneeID = strPtr(assigneeID)
	if w.CreatedAt, err = parseTime(createdAt, time.RFC3339); err != nil {
		return nil, fmt.Errorf("scanning work item created_at: %w", err)
	}
	if w.UpdatedAt, err = parseTime(updatedAt, time.RFC3339); err != nil {
		return nil, fmt.Errorf("scanning work item updated_at: %w", err)
	}
	ref.ID = w.ProjectID
	ref.PrimaryPMID = strPtr(primaryPM)
	w.Project = &ref
	return &w, nil
}
