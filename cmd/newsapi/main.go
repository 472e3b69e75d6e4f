package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/config"
	"github.com/yudiwiratama/central-news/internal/feeds"
	"github.com/yudiwiratama/central-news/internal/fetcher"
	"github.com/yudiwiratama/central-news/internal/logger"
	"github.com/yudiwiratama/central-news/internal/metrics"
	"github.com/yudiwiratama/central-news/internal/scheduler"
	"github.com/yudiwiratama/central-news/internal/server"
	"github.com/yudiwiratama/central-news/internal/store"
	"github.com/yudiwiratama/central-news/internal/summarizer"
	"github.com/yudiwiratama/central-news/internal/summary"
)

func main() {
	logger.Init()
	cfg := config.Load()

	registry := feeds.Default()
	if cfg.FeedsConfigPath != "" {
		loaded, err := feeds.LoadFile(cfg.FeedsConfigPath)
		if err != nil {
			log.WithError(err).Fatal("Failed to load feeds config")
		}
		registry = loaded
	}

	m := metrics.New()

	// Without a credential the server still starts, but the manager stays
	// nil and every data endpoint answers 500.
	var manager *summary.Manager
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set; data endpoints will return errors")
	} else {
		st, err := store.Open(cfg.CacheDir)
		if err != nil {
			log.WithError(err).Fatal("Failed to open cache store")
		}

		client, err := summarizer.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiEndpoint, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Fatal("Failed to create Gemini client")
		}
		defer client.Close()

		manager = summary.NewManager(
			fetcher.New(registry, cfg.FeedTimeout),
			summarizer.New(client, cfg.SummaryTimeout, cfg.MaxSummaryWords),
			st,
			m,
			registry.Categories(),
			time.Duration(cfg.CacheDurationHours)*time.Hour,
		)

		if os.Getenv("ENABLE_SCHEDULER") == "true" {
			sched := scheduler.New(manager, time.Duration(cfg.UpdateIntervalHours)*time.Hour, cfg.MaxNewsLimit)
			go func() {
				if err := sched.Start(context.Background()); err != nil {
					log.WithError(err).Error("Scheduler failed to start")
				}
			}()
		}
	}

	app := server.Server(&server.ServerConfig{
		Manager:   manager,
		Metrics:   m,
		APIKeySet: cfg.GeminiAPIKey != "",
	})

	addr := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	log.WithFields(log.Fields{
		"addr":        addr,
		"cache_hours": cfg.CacheDurationHours,
	}).Info("Starting API server")

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
