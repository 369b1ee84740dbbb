package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrNotCircular       = errors.New("document does not look like a regulatory circular")
	ErrExtraction        = errors.New("text extraction failed")
	ErrOCRNotReady       = errors.New("ocr engine is not ready")
	ErrRateLimited       = errors.New("provider rate limited")
	ErrConfiguration     = errors.New("missing configuration")
	ErrStubContent       = errors.New("stub content detected")
	ErrNotFound          = errors.New("not found")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
