package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.ComplianceTask) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO compliance_tasks (
	id, document_id, title, description, priority, department, due_date, owner_role, confidence, citation, maker, checker, status, review_note, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		task.ID, nullIfEmpty(task.DocumentID), task.Title, task.Description, task.Priority, task.Department,
		task.DueDate, task.OwnerRole, task.Confidence, task.Citation, task.Maker, task.Checker,
		string(task.Status), task.ReviewNote, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create compliance task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.ComplianceTask, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, title, description, priority, department, due_date, owner_role, confidence, citation, maker, checker, status, review_note, created_at, updated_at
FROM compliance_tasks
WHERE id = $1
`, id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "postgres.get_task", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("get compliance task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]domain.ComplianceTask, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, title, description, priority, department, due_date, owner_role, confidence, citation, maker, checker, status, review_note, created_at, updated_at
FROM compliance_tasks
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list compliance tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ComplianceTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compliance task: %w", err)
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compliance tasks: %w", err)
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.ComplianceTask) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE compliance_tasks
SET title = $2, description = $3, priority = $4, department = $5, due_date = $6, owner_role = $7,
	confidence = $8, citation = $9, checker = $10, status = $11, review_note = $12, updated_at = $13
WHERE id = $1
`,
		task.ID, task.Title, task.Description, task.Priority, task.Department, task.DueDate,
		task.OwnerRole, task.Confidence, task.Citation, task.Checker, string(task.Status),
		task.ReviewNote, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update compliance task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "postgres.update_task", fmt.Errorf("id=%s", task.ID))
	}
	return nil
}

type taskScanner interface {
	Scan(dest ...any) error
}

func scanTask(row taskScanner) (domain.ComplianceTask, error) {
	var task domain.ComplianceTask
	var documentID sql.NullString
	var status string
	err := row.Scan(
		&task.ID,
		&documentID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Department,
		&task.DueDate,
		&task.OwnerRole,
		&task.Confidence,
		&task.Citation,
		&task.Maker,
		&task.Checker,
		&status,
		&task.ReviewNote,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return domain.ComplianceTask{}, err
	}
	task.DocumentID = documentID.String
	task.Status = domain.TaskStatus(status)
	return task, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
