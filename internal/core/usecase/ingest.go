package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/core/ports"
)

type IngestCircularUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestCircularUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestCircularUseCase {
	return &IngestCircularUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *IngestCircularUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	return uc.store(ctx, uuid.NewString(), filename, mimeType, body)
}

// Replace re-uploads under an existing id. The repository bumps the
// revision, which invalidates any extraction still in flight for the
// previous upload.
func (uc *IngestCircularUseCase) Replace(
	ctx context.Context,
	id, filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return uc.store(ctx, id, filename, mimeType, body)
}

func (uc *IngestCircularUseCase) store(
	ctx context.Context,
	id, filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	// Unsupported uploads are rejected before any byte is stored, so a bad
	// upload leaves no blob, no row, and no queued event behind.
	if _, err := domain.DetectFormat(filename, mimeType); err != nil {
		return nil, err
	}

	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Revision:    1,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}

	return doc, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
