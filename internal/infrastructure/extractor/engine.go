// Package extractor turns uploaded documents into plain text. PDFs get a
// two-pass treatment: a fast embedded-text pass first, then a full OCR
// rasterization when the direct pass shows the telltale signs of a scanned
// document (a near-empty page or a near-empty aggregate).
package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
)

// Policy holds the content thresholds steering the PDF pass selection.
type Policy struct {
	// MinPageChars is the per-page floor for the direct pass. A page below
	// it aborts the pass and routes the whole document to OCR.
	MinPageChars int
	// MinTotalChars is the aggregate floor. A direct pass finishing under
	// it is treated as unusable and the document goes to OCR as well.
	MinTotalChars int
}

func DefaultPolicy() Policy {
	return Policy{MinPageChars: 50, MinTotalChars: 100}
}

// OCREngine is the rasterizing fallback. Implemented by the ocr package.
type OCREngine interface {
	RecognizePDF(ctx context.Context, content []byte) (text string, pages int, err error)
	RecognizeImage(ctx context.Context, content []byte, ext string) (string, error)
}

// pdfPass tracks the extraction state machine for a single PDF.
type pdfPass int

const (
	passDirect pdfPass = iota
	passOCRFallback
	passDone
)

type Engine struct {
	policy Policy
	ocr    OCREngine
	logger *slog.Logger

	// directPass is a seam for tests; production uses extractPDFDirect.
	directPass func(content []byte, minPageChars int) ([]string, bool, error)
}

func New(policy Policy, ocrEngine OCREngine, logger *slog.Logger) *Engine {
	if policy.MinPageChars <= 0 || policy.MinTotalChars <= 0 {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		policy:     policy,
		ocr:        ocrEngine,
		logger:     logger,
		directPass: extractPDFDirect,
	}
}

// Extract reads the whole upload and dispatches by detected format.
func (e *Engine) Extract(ctx context.Context, filename, mimeType string, body io.Reader) (domain.ExtractionResult, error) {
	format, err := domain.DetectFormat(filename, mimeType)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrExtraction, "extractor.read_body", err)
	}
	if len(content) == 0 {
		return domain.ExtractionResult{}, domain.WrapError(domain.ErrInvalidInput, "extractor.read_body",
			fmt.Errorf("empty upload %q", filename))
	}

	switch format {
	case domain.FormatPDF:
		return e.extractPDF(ctx, filename, content)
	case domain.FormatWord:
		text, err := extractDOCX(content)
		if err != nil {
			return domain.ExtractionResult{}, err
		}
		return domain.ExtractionResult{Text: strings.TrimSpace(text)}, nil
	case domain.FormatImage:
		text, err := e.ocr.RecognizeImage(ctx, content, filepath.Ext(filename))
		if err != nil {
			return domain.ExtractionResult{}, err
		}
		return domain.ExtractionResult{Text: text, PageCount: 1, UsedOCR: true}, nil
	}

	return domain.ExtractionResult{}, domain.WrapError(domain.ErrUnsupportedFormat, "extractor.extract",
		fmt.Errorf("format %q", format))
}

// extractPDF drives the pass state machine. The direct pass either produces
// a usable page set or hands over to OCR; the OCR pass is terminal either
// way. Direct-pass decoder errors are logged and absorbed because the
// fallback regularly recovers documents with broken text layers.
func (e *Engine) extractPDF(ctx context.Context, filename string, content []byte) (domain.ExtractionResult, error) {
	var result domain.ExtractionResult

	state := passDirect
	for state != passDone {
		switch state {
		case passDirect:
			pages, suspectedScan, err := e.directPass(content, e.policy.MinPageChars)
			if err != nil {
				e.logger.Warn("pdf_direct_pass_failed", "filename", filename, "error", err)
			}
			if suspectedScan {
				state = passOCRFallback
				continue
			}
			if totalChars(pages) < e.policy.MinTotalChars {
				e.logger.Info("pdf_direct_pass_insufficient",
					"filename", filename,
					"chars", totalChars(pages),
					"min_total_chars", e.policy.MinTotalChars,
				)
				state = passOCRFallback
				continue
			}
			result = domain.ExtractionResult{
				Text:      strings.Join(pages, "\n\n"),
				PageCount: len(pages),
			}
			state = passDone

		case passOCRFallback:
			text, pages, err := e.ocr.RecognizePDF(ctx, content)
			if err != nil {
				return domain.ExtractionResult{}, err
			}
			result = domain.ExtractionResult{
				Text:      text,
				PageCount: pages,
				UsedOCR:   true,
			}
			state = passDone
		}
	}

	result.Text = strings.TrimSpace(result.Text)
	return result, nil
}
