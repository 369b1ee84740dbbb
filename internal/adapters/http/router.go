// Package httpadapter exposes the dashboard API: synchronous upload
// extraction, the chat proxy, circular analysis, archival ingestion, and
// the maker/checker task lifecycle.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/regdesk/regdesk/internal/core/ports"
	"github.com/regdesk/regdesk/internal/observability/metrics"
)

type Options struct {
	Service          string
	MaxUploadBytes   int64
	RateLimitRPS     int
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.Service == "" {
		o.Service = "regdesk-api"
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 20 << 20
	}
	if o.BackpressureWait <= 0 {
		o.BackpressureWait = 100 * time.Millisecond
	}
	return o
}

type Router struct {
	extractUC ports.CircularExtractor
	chat      ports.ChatCompleter
	analyzeUC ports.CircularAnalyzer
	ingestUC  ports.DocumentIngestor
	docs      ports.DocumentReader
	tasks     ports.TaskService
	metrics   *metrics.PipelineMetrics
	logger    *slog.Logger
	opts      Options
}

func NewRouter(
	extractUC ports.CircularExtractor,
	chat ports.ChatCompleter,
	analyzeUC ports.CircularAnalyzer,
	ingestUC ports.DocumentIngestor,
	docs ports.DocumentReader,
	tasks ports.TaskService,
	pipelineMetrics *metrics.PipelineMetrics,
	logger *slog.Logger,
	opts Options,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		extractUC: extractUC,
		chat:      chat,
		analyzeUC: analyzeUC,
		ingestUC:  ingestUC,
		docs:      docs,
		tasks:     tasks,
		metrics:   pipelineMetrics,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", rt.health)
	mux.HandleFunc("POST /api/upload/extract", rt.extractUpload)
	mux.HandleFunc("POST /api/openai/chat", rt.chatProxy)
	mux.HandleFunc("POST /api/analyze", rt.analyzeCircular)

	mux.HandleFunc("POST /api/documents", rt.uploadDocument)
	mux.HandleFunc("GET /api/documents", rt.listDocuments)
	mux.HandleFunc("GET /api/documents/{document_id}", rt.getDocument)
	mux.HandleFunc("PUT /api/documents/{document_id}", rt.replaceDocument)

	mux.HandleFunc("POST /api/tasks", rt.createTasks)
	mux.HandleFunc("GET /api/tasks", rt.listTasks)
	mux.HandleFunc("GET /api/tasks/export", rt.exportTasks)
	mux.HandleFunc("POST /api/tasks/{task_id}/submit", rt.submitTask)
	mux.HandleFunc("POST /api/tasks/{task_id}/approve", rt.approveTask)
	mux.HandleFunc("POST /api/tasks/{task_id}/reject", rt.rejectTask)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(rt.opts.Service, handler)
	}
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "2")
	}
	if status >= 500 {
		rt.logger.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
