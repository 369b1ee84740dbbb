package httpadapter

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/regdesk/regdesk/internal/core/domain"
)

func postMultipart(t *testing.T, handler http.Handler, path, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, formContentType := multipartUpload(t, "file", filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", formContentType)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestExtractUploadReturnsTextAndEcho(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.extractor.result = domain.ExtractionResult{
		Text:      "Please refer to circular RBI/2024/01.",
		PageCount: 2,
		UsedOCR:   false,
	}

	rec := postMultipart(t, rt.Handler(), "/api/upload/extract", "circular.pdf", "application/pdf", []byte("%PDF-1.4"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var body extractResponse
	decodeBody(t, rec, &body)
	if !body.OK {
		t.Fatal("ok = false, want true")
	}
	if body.Text != "Please refer to circular RBI/2024/01." {
		t.Fatalf("text = %q", body.Text)
	}
	if body.Filename != "circular.pdf" {
		t.Fatalf("filename = %q", body.Filename)
	}
	if body.MimeType != "application/pdf" {
		t.Fatalf("mimetype = %q", body.MimeType)
	}
}

func TestExtractUploadRequiresFileField(t *testing.T) {
	rt, _ := newTestRouter(t, Options{})
	body, formContentType := multipartUpload(t, "attachment", "circular.pdf", "application/pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload/extract", body)
	req.Header.Set("Content-Type", formContentType)
	rec := httptest.NewRecorder()
	rt.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "multipart field 'file' is required" {
		t.Fatalf("error = %q", resp["error"])
	}
}

func TestExtractUploadMapsUnsupportedFormatTo415(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.extractor.err = domain.WrapError(domain.ErrUnsupportedFormat, "detect format",
		errors.New("legacy .doc files are not supported, convert the file to .docx and retry"))

	rec := postMultipart(t, rt.Handler(), "/api/upload/extract", "old.doc", "application/msword", []byte("legacy"))

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestExtractUploadMapsNotCircularTo422(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.extractor.err = domain.WrapError(domain.ErrNotCircular, "extract upload",
		errors.New("document does not look like a regulatory circular"))

	rec := postMultipart(t, rt.Handler(), "/api/upload/extract", "invoice.pdf", "application/pdf", []byte("%PDF-1.4"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestExtractUploadMapsOCRNotReadyTo503(t *testing.T) {
	rt, fakes := newTestRouter(t, Options{})
	fakes.extractor.err = domain.WrapError(domain.ErrOCRNotReady, "extract upload",
		errors.New("tesseract probe has not completed"))

	rec := postMultipart(t, rt.Handler(), "/api/upload/extract", "scan.pdf", "application/pdf", []byte("%PDF-1.4"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
