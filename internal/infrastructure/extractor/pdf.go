package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFDirect runs the embedded-text pass over every page. A page
// yielding fewer than minPageChars characters is the signature of a scanned
// document, so the pass aborts immediately and reports suspectedScan rather
// than wasting time decoding the remaining pages. Decoder failures are also
// reported as suspectedScan: malformed text layers are common in scanner
// output and the rasterizing fallback usually still succeeds on them.
func extractPDFDirect(content []byte, minPageChars int) (pages []string, suspectedScan bool, err error) {
	// The decoder panics on some malformed xref tables and content streams;
	// treat that the same as a decode error.
	defer func() {
		if r := recover(); r != nil {
			pages, suspectedScan, err = nil, true, fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, true, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, true, fmt.Errorf("decode page %d: %w", i, err)
		}
		text = strings.TrimSpace(text)
		if len(text) < minPageChars {
			return nil, true, nil
		}
		pages = append(pages, text)
	}
	return pages, false, nil
}

func totalChars(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(p)
	}
	return n
}
