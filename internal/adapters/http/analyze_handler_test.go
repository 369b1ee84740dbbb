package httpadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/regdesk/regdesk/internal/core/domain"
)

func TestAnalyzeReturnsStructuredResult(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	applicable := true
	fakes.analyzer.result = domain.AnalysisResult{
		Structured: &domain.Analysis{
			Meta: domain.AnalysisMeta{
				Regulator:   "RBI",
				BankContext: domain.BankContext{Applicable: &applicable},
			},
			Summary:   "KYC norms updated for small finance banks.",
			KeyPoints: []string{"Re-verification window shortened to 90 days."},
			Actions:   []domain.Action{{Title: "Update KYC SOP", DueInDays: 30}},
		},
	}

	rec := doJSON(t, rt.Handler(), http.MethodPost, "/api/analyze", analyzeRequest{
		Text: "Master circular on KYC norms.",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var body domain.AnalysisResult
	decodeBody(t, rec, &body)
	if body.Structured == nil {
		t.Fatal("structured is nil")
	}
	if body.Fallback != nil {
		t.Fatal("fallback should be nil alongside structured")
	}
	if body.Structured.Summary != "KYC norms updated for small finance banks." {
		t.Fatalf("summary = %q", body.Structured.Summary)
	}
	if fakes.analyzer.lastText != "Master circular on KYC norms." {
		t.Fatalf("analyzed text = %q", fakes.analyzer.lastText)
	}
}

func TestAnalyzeReturnsFallbackResult(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.analyzer.result = domain.AnalysisResult{
		Fallback: &domain.FallbackAnalysis{
			Raw:     "The circular tightens KYC norms.\nKey Points:\n- Shorter windows",
			Summary: "The circular tightens KYC norms.",
		},
	}

	rec := doJSON(t, rt.Handler(), http.MethodPost, "/api/analyze", analyzeRequest{Text: "some circular"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body domain.AnalysisResult
	decodeBody(t, rec, &body)
	if body.Fallback == nil {
		t.Fatal("fallback is nil")
	}
	if body.Fallback.Raw == "" {
		t.Fatal("fallback raw is empty")
	}
}

func TestAnalyzeUsesExtractedDocumentText(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.reader.doc = &domain.Document{
		ID:   "doc-1",
		Text: "Circular text recovered by the worker.",
	}
	fakes.analyzer.result = domain.AnalysisResult{
		Fallback: &domain.FallbackAnalysis{Raw: "summary"},
	}

	rec := doJSON(t, rt.Handler(), http.MethodPost, "/api/analyze", analyzeRequest{DocumentID: "doc-1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if fakes.analyzer.lastText != "Circular text recovered by the worker." {
		t.Fatalf("analyzed text = %q", fakes.analyzer.lastText)
	}
}

func TestAnalyzeRejectsDocumentWithoutText(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.reader.doc = &domain.Document{ID: "doc-1", Status: domain.StatusProcessing}

	rec := doJSON(t, rt.Handler(), http.MethodPost, "/api/analyze", analyzeRequest{DocumentID: "doc-1"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAnalyzeRequiresTextOrDocumentID(t *testing.T) {
	rt, _ := newTestRouter(t, Options{})
	rec := doJSON(t, rt.Handler(), http.MethodPost, "/api/analyze", analyzeRequest{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "text or document_id is required" {
		t.Fatalf("error = %q", resp["error"])
	}
}

func TestAnalyzeMapsStubContentTo502(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.analyzer.err = domain.WrapError(domain.ErrStubContent, "analyze",
		errors.New("model returned development stub content"))

	rec := doJSON(t, rt.Handler(), http.MethodPost, "/api/analyze", analyzeRequest{Text: "circular"})

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
}
