// Command server starts the cover-letter generation HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lettersmith/ai-cover-letter/internal/adapter/ai/openai"
	"github.com/lettersmith/ai-cover-letter/internal/adapter/ai/tokencount"
	httpserver "github.com/lettersmith/ai-cover-letter/internal/adapter/httpserver"
	"github.com/lettersmith/ai-cover-letter/internal/adapter/observability"
	"github.com/lettersmith/ai-cover-letter/internal/adapter/textextractor"
	"github.com/lettersmith/ai-cover-letter/internal/app"
	"github.com/lettersmith/ai-cover-letter/internal/config"
	"github.com/lettersmith/ai-cover-letter/internal/usecase"
)

func main() {
	// Local development convenience; env vars win over .env values.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	aicl := openai.New(cfg)
	extractor := textextractor.New(aicl)
	generator := usecase.NewGenerateService(aicl, extractor, tokencount.NewCounter(), cfg.ChatModel)

	srv := httpserver.NewServer(cfg, generator, aicl.Ping)
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
