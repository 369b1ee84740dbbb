package domain

import "time"

type TaskStatus string

const (
	TaskDraft         TaskStatus = "draft"
	TaskPendingReview TaskStatus = "pending_review"
	TaskApproved      TaskStatus = "approved"
	TaskRejected      TaskStatus = "rejected"
)

// ComplianceTask is a maker/checker work item materialized from a structured
// analysis action. Maker proposes, a different checker approves or rejects.
type ComplianceTask struct {
	ID          string     `json:"id"`
	DocumentID  string     `json:"document_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Department  string     `json:"department,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerRole   string     `json:"owner_role,omitempty"`
	Confidence  float64    `json:"confidence,omitempty"`
	Citation    string     `json:"citation,omitempty"`
	Maker       string     `json:"maker"`
	Checker     string     `json:"checker,omitempty"`
	Status      TaskStatus `json:"status"`
	ReviewNote  string     `json:"review_note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
