package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/pdf-qa-gen/frontend/internal/api"
	"github.com/pdf-qa-gen/frontend/internal/client"
	"github.com/pdf-qa-gen/frontend/internal/config"
	"github.com/pdf-qa-gen/frontend/internal/storage"
	"github.com/pdf-qa-gen/frontend/internal/upload"
	"github.com/pdf-qa-gen/frontend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// A missing .env is fine; the YAML file and real env still apply
	_ = godotenv.Load()

	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	defaultConfig := filepath.Join(filepath.Dir(exePath), "pdfqa.yaml")

	configPath := flag.String("config", defaultConfig, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()

	// Initialize staging storage
	fileStore, err := storage.NewLocalStore(cfg.GetStagingDir())
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	backend := client.New(cfg.Backend.BaseURL, client.WithLogger(logger))
	controller := upload.NewController(backend, logger)

	// Start background cleanup of staged files nobody released
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Storage.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n := fileStore.CleanupOlderThan(time.Duration(cfg.Storage.StaleUploadMinutes) * time.Minute); n > 0 {
					logger.Info("removed stale staged files", "count", n)
				}
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	api.SetupMiddleware(e, cfg, logger)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Controller: controller,
		Store:      fileStore,
		Logger:     logger,
		Version:    Version,
		BackendURL: backend.Endpoint(),
	}))

	embeddedMode := web.HasEmbeddedFiles()
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", "error", err)
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      e,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	mode := "API only"
	if embeddedMode {
		mode = "Embedded UI"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           PDF Q&A Generator                               ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", *configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Backend:   %-46s║\n", cfg.Backend.BaseURL)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}

	// an in-flight submission is abandoned with the process
	controller.Reset()
	fileStore.Purge()
}
