package ports

import (
	"context"
	"io"

	"github.com/regdesk/regdesk/internal/core/domain"
)

// CircularExtractor is the inbound contract for synchronous upload extraction.
type CircularExtractor interface {
	ExtractUpload(ctx context.Context, filename, mimeType string, body io.Reader) (domain.ExtractionResult, error)
}

// DocumentIngestor is the inbound contract for archival document upload.
// Replace re-uploads under an existing id and bumps the stored revision, so
// extraction results from the superseded upload are dropped as stale.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
	Replace(ctx context.Context, id, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous extraction.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// CircularAnalyzer runs the user-triggered compliance analysis.
type CircularAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.AnalysisResult, error)
}

// TaskService drives the maker/checker lifecycle.
type TaskService interface {
	CreateFromActions(ctx context.Context, documentID, maker string, actions []domain.Action) ([]domain.ComplianceTask, error)
	List(ctx context.Context) ([]domain.ComplianceTask, error)
	Submit(ctx context.Context, taskID string) (*domain.ComplianceTask, error)
	Approve(ctx context.Context, taskID, checker, note string) (*domain.ComplianceTask, error)
	Reject(ctx context.Context, taskID, checker, note string) (*domain.ComplianceTask, error)
}
