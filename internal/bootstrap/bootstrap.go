// Package bootstrap wires configuration into running services. Both
// binaries share the same construction order: observability first, then
// infrastructure, then usecases, so a failed dependency surfaces before
// anything starts accepting work.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "github.com/regdesk/regdesk/internal/adapters/http"
	"github.com/regdesk/regdesk/internal/config"
	"github.com/regdesk/regdesk/internal/core/usecase"
	"github.com/regdesk/regdesk/internal/infrastructure/extractor"
	"github.com/regdesk/regdesk/internal/infrastructure/llm/openai"
	"github.com/regdesk/regdesk/internal/infrastructure/ocr"
	natsqueue "github.com/regdesk/regdesk/internal/infrastructure/queue/nats"
	"github.com/regdesk/regdesk/internal/infrastructure/repository/postgres"
	"github.com/regdesk/regdesk/internal/infrastructure/resilience"
	"github.com/regdesk/regdesk/internal/infrastructure/screening"
	"github.com/regdesk/regdesk/internal/infrastructure/storage/localfs"
	"github.com/regdesk/regdesk/internal/observability/logging"
	"github.com/regdesk/regdesk/internal/observability/metrics"
)

// API is the fully wired HTTP service.
type API struct {
	Config  config.Config
	Logger  *slog.Logger
	Handler http.Handler

	db    *sql.DB
	queue *natsqueue.Queue
}

func NewAPI(ctx context.Context, cfg config.Config) (*API, error) {
	logger := logging.NewJSONLogger("regdesk-api", cfg.LogLevel)
	slog.SetDefault(logger)

	pipelineMetrics := metrics.NewPipelineMetrics("regdesk-api")

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	documentRepo := postgres.NewDocumentRepository(db)
	if err := documentRepo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	taskRepo := postgres.NewTaskRepository(db)

	store, err := localfs.New(cfg.StoragePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	chatExecutor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.ChatRetryMaxAttempts,
		RetryInitialBackoff: cfg.ChatBackoffInitial,
		RetryMaxBackoff:     cfg.ChatBackoffMax,
		OnRetry: func(string, int) {
			pipelineMetrics.RecordChatRetry("regdesk-api")
		},
	})

	queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect queue: %w", err)
	}

	ocrEngine := ocr.New(ocr.Config{
		Tesseract:   cfg.TesseractBin,
		Pdftoppm:    cfg.PdftoppmBin,
		Language:    cfg.OCRLanguage,
		RenderScale: cfg.RenderScale,
		ReadyWait:   cfg.OCRReadyWait,
		PollEvery:   cfg.OCRPollEvery,
	}, logger)

	textExtractor := extractor.New(extractor.Policy{
		MinPageChars:  cfg.MinPageChars,
		MinTotalChars: cfg.MinTotalChars,
	}, ocrEngine, logger)

	screen := screening.New()

	chatClient := openai.New(openai.Config{
		BaseURL:        cfg.OpenAIBaseURL,
		APIKey:         cfg.OpenAIAPIKey,
		Model:          cfg.OpenAIModel,
		Temperature:    cfg.OpenAITemperature,
		DevStubEnabled: cfg.DevStubEnabled,
	}, chatExecutor, logger)

	extractUC := usecase.NewExtractCircularUseCase(textExtractor, screen)
	ingestUC := usecase.NewIngestCircularUseCase(documentRepo, store, queue)
	analyzeUC := usecase.NewAnalyzeCircularUseCase(chatClient, usecase.AnalysisPolicy{
		MaxChars:       cfg.AnalysisMaxChars,
		SampleMaxChars: cfg.AnalysisSampleMax,
	})
	docsUC := usecase.NewDocumentQueryUseCase(documentRepo)
	tasksUC := usecase.NewTaskUseCase(taskRepo)

	router := httpadapter.NewRouter(
		extractUC,
		chatClient,
		analyzeUC,
		ingestUC,
		docsUC,
		tasksUC,
		pipelineMetrics,
		logger,
		httpadapter.Options{
			Service:        "regdesk-api",
			RateLimitRPS:   cfg.APIRateLimitRPS,
			RateLimitBurst: cfg.APIRateLimitBurst,
			MaxInFlight:    cfg.APIMaxInFlight,
		},
	)

	return &API{
		Config:  cfg,
		Logger:  logger,
		Handler: router.Handler(),
		db:      db,
		queue:   queue,
	}, nil
}

func (a *API) Close() {
	if a.queue != nil {
		a.queue.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Worker is the wired extraction worker.
type Worker struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *metrics.WorkerMetrics
	Pipeline *metrics.PipelineMetrics

	Process *usecase.ProcessCircularUseCase
	Queue   *natsqueue.Queue

	db *sql.DB
}

func NewWorker(ctx context.Context, cfg config.Config) (*Worker, error) {
	logger := logging.NewJSONLogger("regdesk-worker", cfg.LogLevel)
	slog.SetDefault(logger)

	workerMetrics := metrics.NewWorkerMetrics("regdesk-worker")
	pipelineMetrics := metrics.NewPipelineMetrics("regdesk-worker")

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	documentRepo := postgres.NewDocumentRepository(db)
	if err := documentRepo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	store, err := localfs.New(cfg.StoragePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect queue: %w", err)
	}

	ocrEngine := ocr.New(ocr.Config{
		Tesseract:   cfg.TesseractBin,
		Pdftoppm:    cfg.PdftoppmBin,
		Language:    cfg.OCRLanguage,
		RenderScale: cfg.RenderScale,
		ReadyWait:   cfg.OCRReadyWait,
		PollEvery:   cfg.OCRPollEvery,
	}, logger)

	textExtractor := extractor.New(extractor.Policy{
		MinPageChars:  cfg.MinPageChars,
		MinTotalChars: cfg.MinTotalChars,
	}, ocrEngine, logger)

	process := usecase.NewProcessCircularUseCase(documentRepo, store, textExtractor, screening.New(), logger)
	process.OnStaleDrop = func(string) {
		pipelineMetrics.RecordStaleDrop("regdesk-worker")
	}

	return &Worker{
		Config:   cfg,
		Logger:   logger,
		Metrics:  workerMetrics,
		Pipeline: pipelineMetrics,
		Process:  process,
		Queue:    queue,
		db:       db,
	}, nil
}

func (w *Worker) Close() {
	if w.Queue != nil {
		w.Queue.Close()
	}
	if w.db != nil {
		w.db.Close()
	}
}

// NewHTTPServer applies the shared timeouts. ReadTimeout is generous
// because multipart uploads of scanned PDFs can run tens of megabytes.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}
