package screening

import (
	"strings"
	"testing"
)

func TestIsLikelyCircularEmptyText(t *testing.T) {
	s := New()
	if s.IsLikelyCircular("") {
		t.Fatalf("empty text must not be a circular")
	}
	if s.IsLikelyCircular("   \n\t  ") {
		t.Fatalf("whitespace-only text must not be a circular")
	}
}

func TestIsLikelyCircularIndicators(t *testing.T) {
	s := New()
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"salutation and ref code", "Dear Sir/Madam, RBI/2024/01 ... all scheduled commercial banks ...", true},
		{"circular word", "This Circular supersedes the earlier instructions.", true},
		{"reference no", "Reference No. 42 of 2025", true},
		{"master direction", "Master Direction on KYC norms", true},
		{"regulatory framework", "the Regulatory Framework for microfinance loans", true},
		{"all nbfcs", "Addressed to All NBFCs operating in the state", true},
		{"ref code with dash", "see DOR/2023-45 for details", true},
		{"resume", "Curriculum Vitae\nSoftware engineer with 5 years of experience in Java.", false},
		{"shopping list", "milk, eggs, bread, butter", false},
	}
	for _, tc := range cases {
		if got := s.IsLikelyCircular(tc.text); got != tc.want {
			t.Fatalf("%s: IsLikelyCircular() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsLikelyCircularIsPermissiveByDesign(t *testing.T) {
	// A news article mentioning a regulator passes the gate. Recall over
	// precision: false rejections of genuine circulars cost more than
	// admitting an unrelated document.
	s := New()
	article := "Today the RBI announced new measures affecting the banking sector."
	if !s.IsLikelyCircular(article) {
		t.Fatalf("any single indicator match must admit the document")
	}
}

func TestIsLikelyCircularIdempotent(t *testing.T) {
	s := New()
	text := "Dear Sir/Madam, please refer to SEBI/2022/118."
	first := s.IsLikelyCircular(text)
	second := s.IsLikelyCircular(text)
	if first != second {
		t.Fatalf("verdict changed between identical calls: %v vs %v", first, second)
	}
}

func TestIsLikelyCircularIgnoresTrailingNoise(t *testing.T) {
	// Indicators beyond the 2000-char prefix must not admit the document.
	s := New()
	noise := strings.Repeat("lorem ipsum dolor sit amet ", 100)
	text := noise + " circular all banks"
	if len(noise) < prefixLimit {
		t.Fatalf("test noise shorter than prefix limit")
	}
	if s.IsLikelyCircular(text) {
		t.Fatalf("indicators past the prefix must be ignored")
	}
}
