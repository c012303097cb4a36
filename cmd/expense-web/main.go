package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"expensetracker/internal/api"
	"expensetracker/internal/cli"
	"expensetracker/internal/controller"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
	"expensetracker/internal/notify"
	"expensetracker/internal/view"
	"expensetracker/web"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	client := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger),
	)

	board := notify.NewBoard(
		notify.WithDurations(cfg.NotifyDuration, cfg.NotifyFade),
		notify.WithLogger(logger),
	)
	ctrl := controller.New(client, board, controller.WithLogger(logger))

	renderer, err := view.NewRenderer(web.TemplatesFS)
	if err != nil {
		logger.Error("Failed to parse templates", log.FieldError, err)
		os.Exit(1)
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		logger.Error("Failed to open static assets", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		Static:             static,
		Ready:              client.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		NotifyDuration:     cfg.NotifyDuration,
		Logger:             logger,
	}, ctrl, board, renderer)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		board.Close()
	})

	logger.Info("Starting expense web server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
