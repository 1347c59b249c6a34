// Package main is the entry point of the chart preset service.
//
// Startup order:
//  1. configuration and logging
//  2. the charts (saved charts, render log) and datasets databases
//  3. the dataset client, query builder, renderer registry and pipeline
//  4. the charts service and, when enabled, the reference dataset service
//  5. maintenance jobs and the HTTP server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/chartpresets/internal/clients/datasetapi"
	"github.com/aristath/chartpresets/internal/config"
	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/instance"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/aristath/chartpresets/internal/modules/charts/query"
	"github.com/aristath/chartpresets/internal/modules/charts/renderer"
	"github.com/aristath/chartpresets/internal/modules/datasets"
	"github.com/aristath/chartpresets/internal/scheduler"
	"github.com/aristath/chartpresets/internal/server"
	"github.com/aristath/chartpresets/internal/utils"
	"github.com/aristath/chartpresets/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
		File:   cfg.LogFile,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting chart preset service")

	chartsDB := openDatabase(log, cfg.DataDir, database.NameCharts, database.ProfileStandard)
	defer chartsDB.Close()

	codec, err := datasetapi.NewCodecFromHex(cfg.DatasetPayloadKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dataset payload codec")
	}

	// Reference dataset service, mounted on this server
	var (
		datasetsDB      *database.DB
		datasetsService *datasets.Service
	)
	if cfg.ServeDatasets {
		datasetsDB = openDatabase(log, cfg.DataDir, database.NameDatasets, database.ProfileCache)
		defer datasetsDB.Close()

		repo := datasets.NewRepository(datasetsDB.Conn(), log)
		seedIfEmpty(log, repo)
		datasetsService = datasets.NewService(repo, codec, log)
	}

	// Chart pipeline
	client := datasetapi.NewClient(cfg.DatasetServiceURL, codec, cfg.DatasetTimeout, log)
	builder := query.NewBuilder(log)
	pipe := pipeline.New(builder, client, renderer.NewRegistry(log), log)
	renderLog := charts.NewRenderLogRepository(chartsDB.Conn())
	chartService := charts.NewService(
		builder,
		pipe,
		instance.NewManager(pipe, cfg.CanvasSettle, log),
		charts.NewSavedChartRepository(chartsDB.Conn()),
		renderLog,
		log,
	)

	// Maintenance jobs
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.RenderLogCleanupCron, charts.NewCleanupJob(renderLog, cfg.RenderLogRetention, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register render log cleanup job")
	}
	if err := sched.AddJob("0 0 * * * *", scheduler.NewCheckDatabasesJob(log, chartsDB, datasetsDB)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register database check job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:            log,
		ChartsDB:       chartsDB,
		DatasetsDB:     datasetsDB,
		Charts:         chartService,
		Datasets:       datasetsService,
		Scheduler:      sched,
		DataDir:        cfg.DataDir,
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().
		Int("port", cfg.Port).
		Str("dataset_service", cfg.DatasetServiceURL).
		Bool("serve_datasets", cfg.ServeDatasets).
		Msg("Chart preset service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func openDatabase(log zerolog.Logger, dataDir, name string, profile database.DatabaseProfile) *database.DB {
	db, err := database.New(database.Config{
		Path:    filepath.Join(dataDir, name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Str("database", name).Msg("Failed to migrate database")
	}
	return db
}

// seedIfEmpty fills an empty dataset store with generated demo data so the
// service is usable out of the box.
func seedIfEmpty(log zerolog.Logger, repo *datasets.Repository) {
	n, err := repo.Count(dataset.TypePriceDividend)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count dataset rows")
		return
	}
	if n > 0 {
		return
	}

	defer utils.OperationTimer("seed_demo_datasets", log)()
	if err := datasets.SeedDemo(repo, time.Now().UTC(), 10); err != nil {
		log.Error().Err(err).Msg("Failed to seed demo datasets")
		return
	}
	log.Info().Msg("Seeded demo datasets")
}
