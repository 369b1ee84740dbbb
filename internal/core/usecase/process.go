package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/core/ports"
)

// ProcessCircularUseCase runs the asynchronous extraction pipeline for one
// ingested document. The revision captured before extraction guards the
// final write: a re-upload during extraction bumps the stored revision and
// this run's result is dropped instead of clobbering the newer upload.
type ProcessCircularUseCase struct {
	repo      ports.DocumentRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	screen    ports.CircularScreen
	logger    *slog.Logger

	// OnStaleDrop is called when a result is discarded for a stale
	// revision; the worker hangs a counter on it.
	OnStaleDrop func(documentID string)
}

func NewProcessCircularUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	screen ports.CircularScreen,
	logger *slog.Logger,
) *ProcessCircularUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessCircularUseCase{
		repo:      repo,
		storage:   storage,
		extractor: extractor,
		screen:    screen,
		logger:    logger,
	}
}

func (uc *ProcessCircularUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}
	revision := doc.Revision

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	res, err := uc.extract(ctx, doc)
	if err != nil {
		// A transient failure (OCR engine still loading, provider hiccup)
		// leaves the document re-ingestible instead of permanently failed.
		if domain.IsKind(err, domain.ErrOCRNotReady) || domain.IsKind(err, domain.ErrTemporary) {
			if revertErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusUploaded, err.Error()); revertErr != nil {
				return fmt.Errorf("%w; revert to uploaded status: %v", err, revertErr)
			}
			return err
		}
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	circular := uc.screen.IsLikelyCircular(res.Text)
	if !circular {
		// Rejected documents keep no extracted text.
		res.Text = ""
	}

	applied, err := uc.repo.SaveExtraction(ctx, documentID, revision, res, circular)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return fmt.Errorf("save extraction: %w", err)
	}
	if !applied {
		uc.logger.Info("stale_extraction_dropped",
			"document_id", documentID,
			"revision", revision,
		)
		if uc.OnStaleDrop != nil {
			uc.OnStaleDrop(documentID)
		}
		return nil
	}

	uc.logger.Info("document_processed",
		"document_id", documentID,
		"revision", revision,
		"pages", res.PageCount,
		"used_ocr", res.UsedOCR,
		"circular", circular,
	)
	return nil
}

func (uc *ProcessCircularUseCase) extract(ctx context.Context, doc *domain.Document) (domain.ExtractionResult, error) {
	body, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("open stored object: %w", err)
	}
	defer body.Close()

	res, err := uc.extractor.Extract(ctx, doc.Filename, doc.MimeType, body)
	if err != nil {
		return domain.ExtractionResult{}, fmt.Errorf("extract text: %w", err)
	}
	return res, nil
}

func (uc *ProcessCircularUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
