package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/config"
	"github.com/yudiwiratama/central-news/internal/feeds"
	"github.com/yudiwiratama/central-news/internal/fetcher"
	"github.com/yudiwiratama/central-news/internal/logger"
	"github.com/yudiwiratama/central-news/internal/metrics"
	"github.com/yudiwiratama/central-news/internal/scheduler"
	"github.com/yudiwiratama/central-news/internal/store"
	"github.com/yudiwiratama/central-news/internal/summarizer"
	"github.com/yudiwiratama/central-news/internal/summary"
)

func main() {
	logger.Init()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	registry := feeds.Default()
	if cfg.FeedsConfigPath != "" {
		loaded, err := feeds.LoadFile(cfg.FeedsConfigPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to load feeds config")
		}
		registry = loaded
	}

	st, err := store.Open(cfg.CacheDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to open cache store")
	}

	client, err := summarizer.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiEndpoint, cfg.GeminiModel)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Gemini client")
	}
	defer client.Close()

	manager := summary.NewManager(
		fetcher.New(registry, cfg.FeedTimeout),
		summarizer.New(client, cfg.SummaryTimeout, cfg.MaxSummaryWords),
		st,
		metrics.New(),
		registry.Categories(),
		time.Duration(cfg.CacheDurationHours)*time.Hour,
	)

	sched := scheduler.New(manager, time.Duration(cfg.UpdateIntervalHours)*time.Hour, cfg.MaxNewsLimit)
	if err := sched.Start(context.Background()); err != nil {
		log.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	// Run until interrupted.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("Scheduler stopped")
}
