package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tugas-go/configs"
	v1 "tugas-go/internal/api/v1"
	"tugas-go/internal/api/v1/handlers"
	"tugas-go/internal/config"
	"tugas-go/pkg/logger"
)

func main() {
	// Load config
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Inisialisasi logger
	logs, err := logger.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialise loggers: %v", err)
	}

	code := run(cfg, logs)
	logs.Sync()
	os.Exit(code)
}

// run returns the process exit code; defers here run before main exits.
func run(cfg configs.Config, logs *logger.Loggers) int {
	logs.System.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database gagal = proses berhenti
	deps, err := config.Build(ctx, cfg, logs)
	if err != nil {
		logs.Error.Error("Failed to initialise dependencies", zap.Error(err))
		return 1
	}
	defer deps.Close()

	h := handlers.New(deps.Accounts, deps.Tasks, deps.DB, logs)
	app := v1.NewApp(h, deps.Tokens, logs, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		logs.System.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logs.Error.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	return serve(app, ":"+cfg.Port, logs)
}

func serve(app *fiber.App, addr string, logs *logger.Loggers) int {
	logs.System.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logs.Error.Error("Application failed to start", zap.Error(err))
		return 1
	}
	return 0
}
