package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/regdesk/regdesk/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateFromActionsMaterializesDrafts(t *testing.T) {
	repo := newTaskRepoFake()
	uc := NewTaskUseCase(repo)
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	uc.now = fixedClock(now)

	tasks, err := uc.CreateFromActions(context.Background(), "doc-1", "alice", []domain.Action{
		{Title: "Update exposure policy", Priority: "high", DueInDays: 30, Department: "risk"},
		{Title: "Notify board", Priority: "medium"},
	})
	if err != nil {
		t.Fatalf("CreateFromActions() error = %v", err)
	}
	if len(tasks) != 2 || len(repo.created) != 2 {
		t.Fatalf("expected 2 tasks, got %d created", len(repo.created))
	}
	first := tasks[0]
	if first.Status != domain.TaskDraft || first.Maker != "alice" || first.DocumentID != "doc-1" {
		t.Fatalf("unexpected draft: %+v", first)
	}
	if first.DueDate == nil || !first.DueDate.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("due date not derived from due_in_days: %v", first.DueDate)
	}
	if tasks[1].DueDate != nil {
		t.Fatalf("absent due_in_days must leave due date nil")
	}
}

func TestCreateFromActionsRequiresMakerAndTitles(t *testing.T) {
	uc := NewTaskUseCase(newTaskRepoFake())

	if _, err := uc.CreateFromActions(context.Background(), "doc-1", "  ", []domain.Action{{Title: "x"}}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("blank maker must fail, got %v", err)
	}
	if _, err := uc.CreateFromActions(context.Background(), "doc-1", "alice", nil); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("empty actions must fail, got %v", err)
	}
	if _, err := uc.CreateFromActions(context.Background(), "doc-1", "alice", []domain.Action{{Title: " "}}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("untitled action must fail, got %v", err)
	}
}

func TestSubmitMovesDraftToPendingReview(t *testing.T) {
	repo := newTaskRepoFake()
	uc := NewTaskUseCase(repo)
	tasks, err := uc.CreateFromActions(context.Background(), "doc-1", "alice", []domain.Action{{Title: "t"}})
	if err != nil {
		t.Fatalf("CreateFromActions() error = %v", err)
	}

	submitted, err := uc.Submit(context.Background(), tasks[0].ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if submitted.Status != domain.TaskPendingReview {
		t.Fatalf("expected pending_review, got %s", submitted.Status)
	}

	// A second submit is invalid: the task is no longer a draft.
	if _, err := uc.Submit(context.Background(), tasks[0].ID); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("resubmit must fail, got %v", err)
	}
}

func TestApproveRequiresDistinctChecker(t *testing.T) {
	repo := newTaskRepoFake()
	uc := NewTaskUseCase(repo)
	tasks, _ := uc.CreateFromActions(context.Background(), "doc-1", "alice", []domain.Action{{Title: "t"}})
	if _, err := uc.Submit(context.Background(), tasks[0].ID); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := uc.Approve(context.Background(), tasks[0].ID, "Alice", "lgtm"); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("maker approving own task must fail, got %v", err)
	}

	approved, err := uc.Approve(context.Background(), tasks[0].ID, "bob", "lgtm")
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.Status != domain.TaskApproved || approved.Checker != "bob" || approved.ReviewNote != "lgtm" {
		t.Fatalf("unexpected approval: %+v", approved)
	}
}

func TestRejectRecordsVerdictAndNote(t *testing.T) {
	repo := newTaskRepoFake()
	uc := NewTaskUseCase(repo)
	tasks, _ := uc.CreateFromActions(context.Background(), "doc-1", "alice", []domain.Action{{Title: "t"}})
	if _, err := uc.Submit(context.Background(), tasks[0].ID); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	rejected, err := uc.Reject(context.Background(), tasks[0].ID, "bob", "wrong department")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != domain.TaskRejected || rejected.ReviewNote != "wrong department" {
		t.Fatalf("unexpected rejection: %+v", rejected)
	}
}

func TestReviewRequiresPendingStatus(t *testing.T) {
	repo := newTaskRepoFake()
	uc := NewTaskUseCase(repo)
	tasks, _ := uc.CreateFromActions(context.Background(), "doc-1", "alice", []domain.Action{{Title: "t"}})

	// Still a draft: not reviewable.
	if _, err := uc.Approve(context.Background(), tasks[0].ID, "bob", ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("approving a draft must fail, got %v", err)
	}
}
