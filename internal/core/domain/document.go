package domain

import "time"

type DocumentFormat string

const (
	FormatPDF         DocumentFormat = "pdf"
	FormatWord        DocumentFormat = "word"
	FormatImage       DocumentFormat = "image"
	FormatUnsupported DocumentFormat = "unsupported"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusExtracted  DocumentStatus = "extracted"
	StatusRejected   DocumentStatus = "rejected"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a persisted circular upload. Revision is bumped on every
// re-upload of the same document id; extraction results carrying a stale
// revision are dropped by the worker instead of overwriting newer state.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Revision    int            `json:"revision"`
	Text        string         `json:"text,omitempty"`
	PageCount   int            `json:"page_count,omitempty"`
	UsedOCR     bool           `json:"used_ocr"`
	Circular    bool           `json:"circular"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ExtractionResult is the output of one extraction run. Text is empty only
// when extraction failed or the document had zero recoverable content.
type ExtractionResult struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count,omitempty"`
	UsedOCR   bool   `json:"used_ocr"`
}
