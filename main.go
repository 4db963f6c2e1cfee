package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"triage_server/config"
	"triage_server/internal/bootstrap"
	"triage_server/pkg/logger"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 10 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Initialize logger early; bootstrap re-inits with the configured level
	logger.Init(logger.Config{
		Level:   logger.LevelInfo,
		Output:  os.Stderr,
		Service: "triage",
	})

	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	mode := flag.String("mode", "api", "Run mode: api, analyze, dashboard")
	message := flag.String("message", "", "Message to analyze (analyze mode, defaults to stdin)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	switch *mode {
	case "api":
		runAPI(cfg)
	case "analyze":
		runAnalyze(cfg, *message)
	case "dashboard":
		if err := bootstrap.RunDashboard(context.Background(), cfg, os.Stdout); err != nil {
			logger.Fatal("Dashboard failed: %v", err)
		}
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	// Graceful shutdown with timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)

		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down: %v", err)
			return
		}
		logger.Info("API server shut down gracefully")
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func runAnalyze(cfg *config.Config, message string) {
	if message == "" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			logger.Fatal("Failed to read stdin: %v", err)
		}
		message = strings.TrimRight(string(data), "\r\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunAnalyze(ctx, cfg, message, os.Stdout); err != nil {
		stop()
		logger.Fatal("Analyze failed: %v", err)
	}
}
