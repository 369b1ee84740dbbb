package usecase

import (
	"context"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/core/ports"
)

// DocumentQueryUseCase is the read model over ingested circulars.
type DocumentQueryUseCase struct {
	repo ports.DocumentRepository
}

func NewDocumentQueryUseCase(repo ports.DocumentRepository) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{repo: repo}
}

func (uc *DocumentQueryUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	return uc.repo.GetByID(ctx, id)
}

func (uc *DocumentQueryUseCase) List(ctx context.Context) ([]domain.Document, error) {
	return uc.repo.List(ctx)
}
