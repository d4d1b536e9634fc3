package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"

	"docvault-backend/internal/bootstrap"
	"docvault-backend/internal/shared/config"
	"docvault-backend/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Fatalf("REDIS_ADDR is required for the worker")
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	srv := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.WorkerCount,
	})

	processor := worker.NewProcessor(app.IngestionsRepo, app.DocumentsRepo, app.Store)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	log.Printf("Starting ingestion worker (concurrency=%d)", cfg.WorkerCount)
	if err := srv.Run(mux); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
