package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"recall/internal/config"
	"recall/internal/daemon"
	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/memory"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, path, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if !exists {
		logger.Info("config file not found; using defaults", logging.String("path", path))
	}

	store, err := memory.Open(cfg)
	if err != nil {
		logger.Error("open memory store", logging.Error(err))
		return
	}

	registry := jobs.NewRegistry()
	pool := buildPool(cfg, registry, store, logger)

	d, err := daemon.New(cfg, store, registry, pool, logger)
	if err != nil {
		store.Close()
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}
	logger.Info("recalld listening", logging.String("address", d.Status().APIAddress))

	<-ctx.Done()
	logger.Info("recalld shutting down")
}
