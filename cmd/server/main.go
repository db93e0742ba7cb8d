package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/cvparse/internal/api"
	"github.com/dgallion1/cvparse/internal/config"
	"github.com/dgallion1/cvparse/internal/events"
	"github.com/dgallion1/cvparse/internal/logger"
	"github.com/dgallion1/cvparse/internal/parser"
	"github.com/dgallion1/cvparse/internal/pipeline"
	"github.com/dgallion1/cvparse/internal/resume"
	"github.com/dgallion1/cvparse/internal/stats"
	"github.com/dgallion1/cvparse/internal/storage"
)

const serviceName = "cvparse"

func main() {
	cfg, err := config.Load()
	log := logger.New(serviceName, cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Object storage.
	var store storage.ObjectStore
	if cfg.S3Endpoint != "" {
		initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
		store, err = storage.NewMinIO(initCtx, storage.MinIOConfig{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		}, log)
		initCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to object storage")
		}
	} else {
		log.Warn().Msg("S3_ENDPOINT not set, keeping uploads in memory")
		store = storage.NewMemory()
	}
	records := storage.NewRecords(store)

	// Events.
	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQ(cfg.RabbitMQURL, cfg.EventsExchange, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		publisher = rmq
	}
	defer publisher.Close()

	// Parser and pipeline.
	seg, err := resume.SegmenterFor(cfg.SegmentMode)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid segment mode")
	}
	latency := stats.NewLatency(time.Hour, 0)
	worker := pipeline.NewWorker(
		records,
		publisher,
		resume.NewParser(resume.WithSegmenter(seg)),
		latency,
		parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		log,
	)
	orch := pipeline.NewOrchestrator(cfg, worker, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, records, latency, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		orch.Stop()
	}()

	log.Info().Str("port", cfg.Port).Str("segment_mode", cfg.SegmentMode).Msg("starting cvparse")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	<-done
}
