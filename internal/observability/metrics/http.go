package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionsTotal   *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	ocrPagesTotal      *prometheus.CounterVec
	screeningTotal     *prometheus.CounterVec
	analysisTotal      *prometheus.CounterVec
	chatRetriesTotal   *prometheus.CounterVec
	llmTokensTotal     *prometheus.CounterVec
	staleDropsTotal    *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "regdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "regdesk",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "extract",
			Name:      "runs_total",
			Help:      "Total extraction runs by method and outcome.",
		},
		[]string{"service", "method", "outcome"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "regdesk",
			Subsystem: "extract",
			Name:      "duration_seconds",
			Help:      "Extraction run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)
	ocrPagesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "extract",
			Name:      "ocr_pages_total",
			Help:      "Total pages sent through the OCR fallback.",
		},
		[]string{"service"},
	)
	screeningTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "screening",
			Name:      "verdicts_total",
			Help:      "Total circular-screening verdicts.",
		},
		[]string{"service", "verdict"},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total analysis runs by outcome (structured, fallback, stub, error).",
		},
		[]string{"service", "outcome"},
	)
	chatRetriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "chat",
			Name:      "retries_total",
			Help:      "Total provider retries caused by rate limiting.",
		},
		[]string{"service"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "chat",
			Name:      "tokens_total",
			Help:      "Provider token usage by direction.",
		},
		[]string{"service", "direction", "model"},
	)
	staleDropsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "regdesk",
			Subsystem: "extract",
			Name:      "stale_drops_total",
			Help:      "Extraction results dropped because the document was replaced mid-flight.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionsTotal,
		extractionDuration,
		ocrPagesTotal,
		screeningTotal,
		analysisTotal,
		chatRetriesTotal,
		llmTokensTotal,
		staleDropsTotal,
	)

	return &PipelineMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		extractionsTotal:   extractionsTotal,
		extractionDuration: extractionDuration,
		ocrPagesTotal:      ocrPagesTotal,
		screeningTotal:     screeningTotal,
		analysisTotal:      analysisTotal,
		chatRetriesTotal:   chatRetriesTotal,
		llmTokensTotal:     llmTokensTotal,
		staleDropsTotal:    staleDropsTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/documents/"):
		return "/api/documents/{document_id}"
	case strings.HasPrefix(path, "/api/tasks/"):
		return "/api/tasks/{task_id}"
	default:
		return path
	}
}

func (m *PipelineMetrics) RecordExtraction(service, method, outcome string, duration time.Duration) {
	if method == "" {
		method = "unknown"
	}
	m.extractionsTotal.WithLabelValues(service, method, outcome).Inc()
	m.extractionDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordOCRPages(service string, pages int) {
	if pages <= 0 {
		return
	}
	m.ocrPagesTotal.WithLabelValues(service).Add(float64(pages))
}

func (m *PipelineMetrics) RecordScreeningVerdict(service string, likelyCircular bool) {
	verdict := "rejected"
	if likelyCircular {
		verdict = "admitted"
	}
	m.screeningTotal.WithLabelValues(service, verdict).Inc()
}

func (m *PipelineMetrics) RecordAnalysis(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysisTotal.WithLabelValues(service, outcome).Inc()
}

func (m *PipelineMetrics) RecordChatRetry(service string) {
	m.chatRetriesTotal.WithLabelValues(service).Inc()
}

func (m *PipelineMetrics) RecordTokenUsage(service, model string, promptTokens, completionTokens int) {
	if model == "" {
		model = "unknown"
	}
	if promptTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "in", model).Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "out", model).Add(float64(completionTokens))
	}
}

func (m *PipelineMetrics) RecordStaleDrop(service string) {
	m.staleDropsTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
