package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vjranagit/tempmon/internal/config"
	"github.com/vjranagit/tempmon/pkg/api"
	"github.com/vjranagit/tempmon/pkg/sensor"
	"github.com/vjranagit/tempmon/pkg/storage"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)

	log.WithFields(log.Fields{
		"version":       version,
		"listen_addr":   cfg.Server.ListenAddr,
		"sensor_url":    cfg.Sensor.URL,
		"poll_interval": time.Duration(cfg.Sensor.PollInterval),
		"max_capacity":  cfg.Storage.MaxCapacity,
	}).Info("starting tempmon")

	store := storage.New(cfg.ToStorageConfig())

	var cache *storage.ResultCache
	if ttl := time.Duration(cfg.Storage.CacheTTL); ttl > 0 {
		cache = storage.NewResultCache(64, ttl)
	}

	poller := sensor.NewPoller(
		cfg.Sensor.URL,
		time.Duration(cfg.Sensor.PollInterval),
		time.Duration(cfg.Sensor.Timeout),
		store,
	)
	server := api.NewServer(cfg.Server.ListenAddr, store, cache, time.Duration(cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return poller.Run(ctx)
	})
	g.Go(func() error {
		log.WithField("addr", cfg.Server.ListenAddr).Info("API server listening")
		return server.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutdown signal received, stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.Timeout))
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("tempmon exited with error: %v", err)
	}
	log.Info("tempmon stopped")
}
