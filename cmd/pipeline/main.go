package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"population-pipeline/internal/config"
	"population-pipeline/internal/pipeline"
	"population-pipeline/internal/store"
	"population-pipeline/internal/telemetry"
	"population-pipeline/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("⚠️ telemetry shutdown: %v", err)
		}
	}()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	exporters := []pipeline.Exporter{pipeline.ConsoleExporter{Out: os.Stdout}}
	if cfg.ReportDir != "" {
		exporters = append(exporters, pipeline.FileExporter{Output: utils.NewOutputManager(cfg.ReportDir)})
	}

	fetcher := pipeline.NewHTTPFetcher(cfg.Source, &http.Client{Timeout: cfg.Source.Timeout})
	p := pipeline.New(fetcher, st,
		pipeline.WithRecorder(st),
		pipeline.WithExporters(exporters...),
		pipeline.WithTracerProvider(tp),
	)

	_, err = p.Run(ctx)
	return err
}
