package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"flyer-studio/api"
	"flyer-studio/config"
	"flyer-studio/render"
	"flyer-studio/services"
	"flyer-studio/storage"
	"flyer-studio/telemetry"
	"flyer-studio/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("=== Flyer Studio starting ===")
	logger.Info("Config — addr: %s | cycle threshold: %d | window: %d | record workers: %d",
		cfg.HTTPAddr, cfg.LearningCycleThreshold, cfg.LearningWindow, cfg.RecordWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New()

	catalog, err := services.NewStyleCatalog()
	if err != nil {
		logger.Error("Failed to load style catalog: %v", err)
		os.Exit(1)
	}

	engine := services.NewLearningEngine(services.LearningConfig{
		CycleThreshold: cfg.LearningCycleThreshold,
		Window:         cfg.LearningWindow,
		MinSuccesses:   cfg.LearningMinSuccesses,
	}, services.DefaultSeeds(catalog, time.Now()), logger, metrics)

	var pgStore *storage.PostgresStore
	var patternStore storage.PatternStore
	if cfg.PersistPatterns {
		pgStore, err = storage.NewPostgresStore(ctx, cfg.DSN(), &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		defer pgStore.Close()
		patternStore = pgStore

		snap, err := patternStore.LoadPatterns(ctx)
		if err != nil {
			logger.Error("Failed to load pattern library: %v", err)
		} else {
			engine.ImportPatternLibrary(*snap)
			logger.Info("Restored %d patterns (%d incorporated records) from PostgreSQL",
				snap.PatternCount(), len(snap.Incorporated))
		}
	}

	orch := services.NewOrchestrator(catalog, engine, cfg.RecordWorkers, logger, metrics)

	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		logger.Error("Failed to build renderer: %v", err)
		os.Exit(1)
	}
	exporter := render.NewExporter(renderer, cfg.ChromeBin, cfg.MaxRetries, logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(orch, renderer, exporter, logger).WithExportDir(cfg.ExportDir), metrics, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown: %v", err)
	}

	orch.Flush()
	records := orch.Records()
	snap := orch.ExportPatternLibrary()

	var writers []storage.RecordWriter
	if pgStore != nil {
		if err := patternStore.SavePatterns(shutdownCtx, snap); err != nil {
			logger.Error("PostgreSQL pattern save failed: %v", err)
		} else {
			logger.Info("Pattern library stored in PostgreSQL (table: patterns)")
		}
		writers = append(writers, pgStore)
	}
	if len(records) > 0 {
		csvWriter, err := storage.NewCSVWriter(cfg.RecordsCSVPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			defer csvWriter.Close()
			writers = append(writers, csvWriter)
		}
	}
	for _, w := range writers {
		if err := w.WriteRecords(records); err != nil {
			logger.Error("Record write failed: %v", err)
		}
	}
	if len(records) > 0 {
		logger.Info("%d generation records saved to %s", len(records), cfg.RecordsCSVPath)
	}

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(os.Stdout, reportSvc.Generate(orch.LearningStatus(), records, snap))

	fmt.Printf("  Done. Records → %s | Patterns → %s\n\n", cfg.RecordsCSVPath, persistTarget(cfg))
}

func persistTarget(cfg *config.Config) string {
	if cfg.PersistPatterns {
		return "PostgreSQL (patterns table)"
	}
	return "memory only"
}
