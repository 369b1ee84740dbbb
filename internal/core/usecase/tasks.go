package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/core/ports"
)

// TaskUseCase drives the maker/checker lifecycle. Tasks are materialized
// only from structured analysis actions; fallback analyses never reach this
// code. Drafts move to pending_review on submit, and a checker distinct
// from the maker settles them.
type TaskUseCase struct {
	repo ports.TaskRepository
	now  func() time.Time
}

func NewTaskUseCase(repo ports.TaskRepository) *TaskUseCase {
	return &TaskUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (uc *TaskUseCase) CreateFromActions(ctx context.Context, documentID, maker string, actions []domain.Action) ([]domain.ComplianceTask, error) {
	maker = strings.TrimSpace(maker)
	if maker == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create tasks", errors.New("maker is required"))
	}
	if len(actions) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create tasks", errors.New("no actions to materialize"))
	}

	now := uc.now()
	out := make([]domain.ComplianceTask, 0, len(actions))
	for i, action := range actions {
		if strings.TrimSpace(action.Title) == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "create tasks",
				fmt.Errorf("action %d has no title", i))
		}

		task := domain.ComplianceTask{
			ID:          uuid.NewString(),
			DocumentID:  documentID,
			Title:       action.Title,
			Description: action.Description,
			Priority:    action.Priority,
			Department:  action.Department,
			OwnerRole:   action.OwnerRole,
			Confidence:  action.Confidence,
			Citation:    action.Citation,
			Maker:       maker,
			Status:      domain.TaskDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if action.DueInDays > 0 {
			due := now.AddDate(0, 0, action.DueInDays)
			task.DueDate = &due
		}

		if err := uc.repo.Create(ctx, &task); err != nil {
			return nil, fmt.Errorf("create task %q: %w", action.Title, err)
		}
		out = append(out, task)
	}
	return out, nil
}

func (uc *TaskUseCase) List(ctx context.Context) ([]domain.ComplianceTask, error) {
	return uc.repo.List(ctx)
}

func (uc *TaskUseCase) Submit(ctx context.Context, taskID string) (*domain.ComplianceTask, error) {
	task, err := uc.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.TaskDraft {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit task",
			fmt.Errorf("status %q cannot be submitted", task.Status))
	}

	task.Status = domain.TaskPendingReview
	task.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("submit task: %w", err)
	}
	return task, nil
}

func (uc *TaskUseCase) Approve(ctx context.Context, taskID, checker, note string) (*domain.ComplianceTask, error) {
	return uc.review(ctx, taskID, checker, note, domain.TaskApproved)
}

func (uc *TaskUseCase) Reject(ctx context.Context, taskID, checker, note string) (*domain.ComplianceTask, error) {
	return uc.review(ctx, taskID, checker, note, domain.TaskRejected)
}

func (uc *TaskUseCase) review(ctx context.Context, taskID, checker, note string, verdict domain.TaskStatus) (*domain.ComplianceTask, error) {
	checker = strings.TrimSpace(checker)
	if checker == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review task", errors.New("checker is required"))
	}

	task, err := uc.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.TaskPendingReview {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review task",
			fmt.Errorf("status %q is not reviewable", task.Status))
	}
	if strings.EqualFold(checker, task.Maker) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "review task",
			errors.New("checker must differ from maker"))
	}

	task.Status = verdict
	task.Checker = checker
	task.ReviewNote = note
	task.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("review task: %w", err)
	}
	return task, nil
}
