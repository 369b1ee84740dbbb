package httpadapter

import (
	"errors"
	"net/http"
	"strings"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type analyzeRequest struct {
	// Exactly one of Text or DocumentID is required. DocumentID reuses
	// the extracted text of an ingested circular.
	Text       string `json:"text,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

func (rt *Router) analyzeCircular(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" && req.DocumentID != "" {
		doc, err := rt.docs.GetByID(r.Context(), req.DocumentID)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		if strings.TrimSpace(doc.Text) == "" {
			rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "analyze",
				errors.New("document has no extracted text yet")))
			return
		}
		text = doc.Text
	}
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text or document_id is required"})
		return
	}

	result, err := rt.analyzeUC.Analyze(r.Context(), text)
	if err != nil {
		rt.recordAnalysis(analysisOutcome(err))
		rt.writeError(w, r, err)
		return
	}

	switch {
	case result.Structured != nil:
		rt.recordAnalysis("structured")
	case result.Fallback != nil:
		rt.recordAnalysis("fallback")
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) recordAnalysis(outcome string) {
	if rt.metrics != nil {
		rt.metrics.RecordAnalysis(rt.opts.Service, outcome)
	}
}

func analysisOutcome(err error) string {
	if domain.IsKind(err, domain.ErrStubContent) {
		return "stub"
	}
	return "error"
}
