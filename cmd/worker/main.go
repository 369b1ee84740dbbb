package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/regdesk/regdesk/internal/bootstrap"
	"github.com/regdesk/regdesk/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	worker, err := bootstrap.NewWorker(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer worker.Close()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", worker.Metrics.Handler())
	metricsMux.Handle("GET /metrics/pipeline", worker.Pipeline.Handler())
	metricsServer := bootstrap.NewHTTPServer(":"+cfg.WorkerMetricsPort, metricsMux)
	go func() {
		worker.Logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			worker.Logger.Error("worker_metrics_failed", "error", err)
		}
	}()

	worker.Logger.Info("worker_subscribing", "subject", cfg.NATSSubject)
	err = worker.Queue.SubscribeDocumentIngested(ctx, func(msgCtx context.Context, documentID string) error {
		start := time.Now()
		worker.Metrics.StartJob()
		processErr := worker.Process.ProcessByID(msgCtx, documentID)
		worker.Metrics.FinishJob("regdesk-worker", time.Since(start), processErr)
		return processErr
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		worker.Logger.Error("worker_subscription_failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		worker.Logger.Error("worker_metrics_shutdown_failed", "error", err)
	}
	worker.Logger.Info("worker_stopped")
}
