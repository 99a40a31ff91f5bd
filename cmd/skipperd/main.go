// Command skipperd runs the long-lived maintenance daemon: it holds the
// single-instance lock, keeps the databases open, and sweeps expired cache
// entries on a schedule.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"skipper/internal/analysis"
	"skipper/internal/config"
	"skipper/internal/daemon"
	"skipper/internal/logging"
	"skipper/internal/preflight"
	"skipper/internal/services/classifier"
	"skipper/internal/stats"
	"skipper/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		OutputPaths: []string{"stdout", cfg.LogFilePath()},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	kv, err := store.OpenSQLite(cfg.CacheDBPath())
	if err != nil {
		logger.Error("open cache store", logging.Error(err))
		return
	}

	statsRepo, err := stats.Open(cfg.StatsDBPath())
	if err != nil {
		logger.Error("open stats store", logging.Error(err))
		_ = kv.Close()
		return
	}

	var health *classifier.Client
	if cfg.Classifier.APIKey != "" {
		health = classifier.NewClient(classifier.Config{
			APIKey:         cfg.Classifier.APIKey,
			BaseURL:        cfg.Classifier.BaseURL,
			Model:          cfg.Classifier.Model,
			Referer:        cfg.Classifier.Referer,
			Title:          cfg.Classifier.Title,
			TimeoutSeconds: cfg.Classifier.TimeoutSeconds,
		})
	}

	cache := analysis.NewCache(kv, cfg.Cache.RetentionDays, logger)
	d, err := daemon.New(cfg, kv, cache, statsRepo, healthChecker(health), logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("skipperd shutting down")
}

// healthChecker avoids handing the daemon a typed nil interface.
func healthChecker(client *classifier.Client) preflight.HealthChecker {
	if client == nil {
		return nil
	}
	return client
}
