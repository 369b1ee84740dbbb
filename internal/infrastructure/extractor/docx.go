package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
)

const docxMainDocument = "word/document.xml"

// textRunTag matches <w:t>...</w:t> including variants carrying attributes
// such as xml:space="preserve". Pulling text runs directly keeps the reader
// independent of paragraph and run attributes, which vary wildly between
// Word versions.
var textRunTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// paragraphBreak marks paragraph and explicit line break boundaries so the
// flattened text keeps enough line structure for the screening gate, whose
// indicators include salutation and reference lines.
var paragraphBreak = regexp.MustCompile(`</w:p>|<w:br[^>]*/>`)

func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "extractor.docx", fmt.Errorf("not an OOXML package: %w", err))
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxMainDocument {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "extractor.docx", err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "extractor.docx", err)
		}
		break
	}
	if docXML == nil {
		return "", domain.WrapError(domain.ErrExtraction, "extractor.docx",
			fmt.Errorf("%s missing from package", docxMainDocument))
	}

	var lines []string
	for _, paragraph := range paragraphBreak.Split(string(docXML), -1) {
		runs := textRunTag.FindAllStringSubmatch(paragraph, -1)
		if len(runs) == 0 {
			continue
		}
		parts := make([]string, 0, len(runs))
		for _, run := range runs {
			// Run text arrives XML-escaped; screening and analysis expect
			// the literal characters.
			parts = append(parts, html.UnescapeString(run[1]))
		}
		if line := strings.TrimSpace(strings.Join(parts, "")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
