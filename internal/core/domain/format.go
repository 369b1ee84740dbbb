package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDoc  = "application/msword"
)

// errLegacyDoc is returned for binary .doc uploads. The format has no
// dependable pure-Go reader; users get an actionable instruction instead of
// a silent garbage extraction.
var errLegacyDoc = fmt.Errorf("legacy .doc files are not supported, convert the document to .docx and upload again")

// DetectFormat classifies an upload by its declared MIME type first and
// falls back to the filename extension for browsers that send
// application/octet-stream. Both ingestion paths run it before any byte of
// the upload is stored or extracted.
func DetectFormat(filename, mimeType string) (DocumentFormat, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch mt {
	case mimePDF:
		return FormatPDF, nil
	case mimeDocx:
		return FormatWord, nil
	case mimeDoc:
		return FormatUnsupported, WrapError(ErrUnsupportedFormat, "detect_format", errLegacyDoc)
	case "image/png", "image/jpeg", "image/webp":
		return FormatImage, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatWord, nil
	case ".doc":
		return FormatUnsupported, WrapError(ErrUnsupportedFormat, "detect_format", errLegacyDoc)
	case ".png", ".jpg", ".jpeg", ".webp":
		return FormatImage, nil
	}

	return FormatUnsupported, WrapError(ErrUnsupportedFormat, "detect_format",
		fmt.Errorf("mime %q, file %q", mimeType, filename))
}
