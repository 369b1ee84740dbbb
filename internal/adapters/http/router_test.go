package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/regdesk/regdesk/internal/core/domain"
	"github.com/regdesk/regdesk/internal/observability/metrics"
)

type extractorFake struct {
	result domain.ExtractionResult
	err    error
}

func (f *extractorFake) ExtractUpload(_ context.Context, _, _ string, body io.Reader) (domain.ExtractionResult, error) {
	_, _ = io.Copy(io.Discard, body)
	return f.result, f.err
}

type chatFake struct {
	lastRequest domain.ChatRequest
	response    domain.ChatResponse
	err         error
}

func (f *chatFake) Complete(_ context.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	f.lastRequest = req
	return f.response, f.err
}

type analyzerFake struct {
	lastText string
	result   domain.AnalysisResult
	err      error
}

func (f *analyzerFake) Analyze(_ context.Context, text string) (domain.AnalysisResult, error) {
	f.lastText = text
	return f.result, f.err
}

type ingestorFake struct {
	uploaded *domain.Document
	replaced *domain.Document
	err      error
}

func (f *ingestorFake) Upload(_ context.Context, _, _ string, body io.Reader) (*domain.Document, error) {
	_, _ = io.Copy(io.Discard, body)
	return f.uploaded, f.err
}

func (f *ingestorFake) Replace(_ context.Context, _, _, _ string, body io.Reader) (*domain.Document, error) {
	_, _ = io.Copy(io.Discard, body)
	return f.replaced, f.err
}

type readerFake struct {
	doc  *domain.Document
	docs []domain.Document
	err  error
}

func (f *readerFake) GetByID(_ context.Context, _ string) (*domain.Document, error) {
	return f.doc, f.err
}

func (f *readerFake) List(_ context.Context) ([]domain.Document, error) {
	return f.docs, f.err
}

type taskServiceFake struct {
	created     []domain.ComplianceTask
	listed      []domain.ComplianceTask
	reviewed    *domain.ComplianceTask
	lastChecker string
	lastNote    string
	err         error
}

func (f *taskServiceFake) CreateFromActions(_ context.Context, _, _ string, _ []domain.Action) ([]domain.ComplianceTask, error) {
	return f.created, f.err
}

func (f *taskServiceFake) List(_ context.Context) ([]domain.ComplianceTask, error) {
	return f.listed, f.err
}

func (f *taskServiceFake) Submit(_ context.Context, _ string) (*domain.ComplianceTask, error) {
	return f.reviewed, f.err
}

func (f *taskServiceFake) Approve(_ context.Context, _, checker, note string) (*domain.ComplianceTask, error) {
	f.lastChecker = checker
	f.lastNote = note
	return f.reviewed, f.err
}

func (f *taskServiceFake) Reject(_ context.Context, _, checker, note string) (*domain.ComplianceTask, error) {
	f.lastChecker = checker
	f.lastNote = note
	return f.reviewed, f.err
}

type routerFakes struct {
	extractor *extractorFake
	chat      *chatFake
	analyzer  *analyzerFake
	ingestor  *ingestorFake
	reader    *readerFake
	tasks     *taskServiceFake
}

func newTestRouter(t *testing.T, opts Options) (*Router, *routerFakes) {
	t.Helper()
	fakes := &routerFakes{
		extractor: &extractorFake{},
		chat:      &chatFake{},
		analyzer:  &analyzerFake{},
		ingestor:  &ingestorFake{},
		reader:    &readerFake{},
		tasks:     &taskServiceFake{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt := NewRouter(
		fakes.extractor,
		fakes.chat,
		fakes.analyzer,
		fakes.ingestor,
		fakes.reader,
		fakes.tasks,
		metrics.NewPipelineMetrics("test"),
		logger,
		opts,
	)
	return rt, fakes
}

func multipartUpload(t *testing.T, fieldName, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + fieldName + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	rt, _ := newTestRouter(t, Options{})
	rec := doJSON(t, rt.Handler(), http.MethodGet, "/api/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]any
	decodeBody(t, rec, &body)
	if body["ok"] != true {
		t.Fatalf("ok = %v, want true", body["ok"])
	}
	if body["time"] == "" {
		t.Fatal("time is empty")
	}
}

func TestRequestIDIsEchoedOnEveryResponse(t *testing.T) {
	rt, _ := newTestRouter(t, Options{})
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "req-abc" {
		t.Fatalf("request id = %q, want %q", got, "req-abc")
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestMetricsEndpointIsServed(t *testing.T) {
	rt, _ := newTestRouter(t, Options{})
	rec := doJSON(t, rt.Handler(), http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("regdesk_http_in_flight_requests")) {
		t.Fatalf("unexpected metrics body: %q", rec.Body.String())
	}
}
