package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "population-pipeline/docs"
	"population-pipeline/internal/api"
	"population-pipeline/internal/api/handler"
	"population-pipeline/internal/config"
	"population-pipeline/internal/pipeline"
	"population-pipeline/internal/store"
	"population-pipeline/internal/telemetry"
	"population-pipeline/pkg/router"
	"population-pipeline/pkg/utils"
)

// @title Population Pipeline API
// @version 1.0
// @description Fetches the population dataset, persists it and reconciles three aggregations of the 2018-2020 total.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Fatalf("❌ telemetry: %v", err)
	}
	defer tp.Shutdown(context.Background())

	// Init DB
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("❌ database: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		log.Fatalf("❌ migrate: %v", err)
	}

	var exporters []pipeline.Exporter
	if cfg.ReportDir != "" {
		exporters = append(exporters, pipeline.FileExporter{Output: utils.NewOutputManager(cfg.ReportDir)})
	}
	fetcher := pipeline.NewHTTPFetcher(cfg.Source, &http.Client{Timeout: cfg.Source.Timeout})
	p := pipeline.New(fetcher, st,
		pipeline.WithRecorder(st),
		pipeline.WithExporters(exporters...),
		pipeline.WithTracerProvider(tp),
	)

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r, handler.NewRunHandler(p, st))

	// Start server
	if err := r.Start(ctx, cfg.ListenAddr); err != nil {
		log.Fatalf("❌ server: %v", err)
	}
}
