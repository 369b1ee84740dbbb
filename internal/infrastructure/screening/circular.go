// Package screening implements the cheap admission gate that keeps obviously
// unrelated uploads (resumes, invoices, articles) out of the analysis
// pipeline. It is deliberately permissive: a single indicator match admits
// the document, trading precision for recall.
package screening

import (
	"regexp"
	"strings"
)

// prefixLimit bounds the scanned text. Trailing OCR output is noisy and the
// indicators of a circular (letterhead, reference line, salutation,
// addressee) all sit near the top.
const prefixLimit = 2000

var indicators = []*regexp.Regexp{
	regexp.MustCompile(`\bcircular\b`),
	regexp.MustCompile(`reference no\.`),
	regexp.MustCompile(`\b(rbi|sebi|irdai|pfrda|nbfc)\b`),
	regexp.MustCompile(`\b(banking|regulation|regulatory|compliance)\b`),
	regexp.MustCompile(`dear\s+sir\s*/\s*madam`),
	regexp.MustCompile(`all\s+(scheduled\s+commercial\s+)?banks`),
	regexp.MustCompile(`all\s+nbfcs`),
	regexp.MustCompile(`master\s+(circular|direction)`),
	regexp.MustCompile(`regulatory\s+framework`),
	// Regulator-style reference codes, e.g. RBI/2024/01 or DOR/2023-45.
	// Input is lowercased before matching.
	regexp.MustCompile(`\b[a-z]{2,4}/\d{2,4}[/-]\d{2,4}\b`),
}

type Screen struct{}

func New() *Screen {
	return &Screen{}
}

// IsLikelyCircular reports whether the text resembles a regulatory circular.
// Only the first 2000 characters are considered, lowercased. Empty text is
// never a circular.
func (s *Screen) IsLikelyCircular(text string) bool {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return false
	}
	if len(sample) > prefixLimit {
		sample = sample[:prefixLimit]
	}
	sample = strings.ToLower(sample)

	for _, re := range indicators {
		if re.MatchString(sample) {
			return true
		}
	}
	return false
}
