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

	app, err := bootstrap.NewAPI(ctx, cfg)
	if err != nil {
		// Logger may not exist yet, so write straight to stderr.
		os.Stderr.WriteString("bootstrap failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer app.Close()

	server := bootstrap.NewHTTPServer(":"+cfg.APIPort, app.Handler)

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("api_listening", "port", cfg.APIPort)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		app.Logger.Info("api_shutting_down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("api_serve_failed", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("api_shutdown_failed", "error", err)
	}
	app.Logger.Info("api_stopped")
}
