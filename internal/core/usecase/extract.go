package usecase

import (
	"context"
	"errors"
	"io"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/core/ports"
)

// ExtractCircularUseCase is the synchronous upload-extract path: the caller
// gets the extracted text back in the same request, gated by the circular
// screen. Nothing is persisted here; the archival path is IngestCircularUseCase.
type ExtractCircularUseCase struct {
	extractor ports.TextExtractor
	screen    ports.CircularScreen
}

func NewExtractCircularUseCase(extractor ports.TextExtractor, screen ports.CircularScreen) *ExtractCircularUseCase {
	return &ExtractCircularUseCase{extractor: extractor, screen: screen}
}

func (uc *ExtractCircularUseCase) ExtractUpload(ctx context.Context, filename, mimeType string, body io.Reader) (domain.ExtractionResult, error) {
	res, err := uc.extractor.Extract(ctx, filename, mimeType, body)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	if !uc.screen.IsLikelyCircular(res.Text) {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrNotCircular, "extract upload",
			errors.New("screening gate rejected the document"))
	}
	return res, nil
}
