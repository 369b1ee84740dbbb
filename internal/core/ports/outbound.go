package ports

import (
	"context"
	"io"

	"github.com/regdesk/regdesk/internal/core/domain"
)

// DocumentRepository persists and reads circular state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	// SaveExtraction stores extracted text for the given revision only.
	// It reports false when the revision is stale (document replaced while
	// extraction was in flight) so the caller drops the result.
	SaveExtraction(ctx context.Context, id string, revision int, res domain.ExtractionResult, circular bool) (bool, error)
}

// TaskRepository persists maker/checker compliance tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.ComplianceTask) error
	GetByID(ctx context.Context, id string) (*domain.ComplianceTask, error)
	List(ctx context.Context) ([]domain.ComplianceTask, error)
	Update(ctx context.Context, task *domain.ComplianceTask) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor produces the best-effort plain-text transcription of an
// uploaded document.
type TextExtractor interface {
	Extract(ctx context.Context, filename, mimeType string, body io.Reader) (domain.ExtractionResult, error)
}

// CircularScreen is the cheap admission gate in front of analysis.
type CircularScreen interface {
	IsLikelyCircular(text string) bool
}

// ChatCompleter forwards one chat exchange to the model provider.
type ChatCompleter interface {
	Complete(ctx context.Context, req domain.ChatRequest) (domain.ChatResponse, error)
}
