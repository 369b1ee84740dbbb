package httpadapter

import (
	"net/http"
	"time"

	"github.com/regdesk/regdesk/internal/core/domain"
)

type extractResponse struct {
	OK       bool   `json:"ok"`
	Text     string `json:"text"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
}

// extractUpload is the synchronous path: extract in-request and return the
// text, or reject with 415 (format) / 422 (screening gate).
func (rt *Router) extractUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	start := time.Now()

	res, err := rt.extractUC.ExtractUpload(r.Context(), fileHeader.Filename, mimeType, file)
	if err != nil {
		rt.recordExtractFailure(err, time.Since(start))
		rt.writeError(w, r, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordExtraction(rt.opts.Service, extractMethod(res), "success", time.Since(start))
		rt.metrics.RecordOCRPages(rt.opts.Service, ocrPages(res))
		rt.metrics.RecordScreeningVerdict(rt.opts.Service, true)
	}

	writeJSON(w, http.StatusOK, extractResponse{
		OK:       true,
		Text:     res.Text,
		Filename: fileHeader.Filename,
		MimeType: mimeType,
	})
}

func (rt *Router) recordExtractFailure(err error, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	if domain.IsKind(err, domain.ErrNotCircular) {
		// Extraction itself succeeded; the screening gate said no.
		rt.metrics.RecordExtraction(rt.opts.Service, "unknown", "not_circular", duration)
		rt.metrics.RecordScreeningVerdict(rt.opts.Service, false)
		return
	}
	rt.metrics.RecordExtraction(rt.opts.Service, "unknown", "error", duration)
}

func extractMethod(res domain.ExtractionResult) string {
	if res.UsedOCR {
		return "ocr"
	}
	return "direct"
}

func ocrPages(res domain.ExtractionResult) int {
	if !res.UsedOCR {
		return 0
	}
	return res.PageCount
}
