package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/summary"
)

// Scheduler periodically forces a refresh of every category summary.
type Scheduler struct {
	manager  *summary.Manager
	interval time.Duration
	maxNews  int
	cron     *cron.Cron
}

func New(manager *summary.Manager, interval time.Duration, maxNews int) *Scheduler {
	return &Scheduler{
		manager:  manager,
		interval: interval,
		maxNews:  maxNews,
	}
}

// Start runs one refresh immediately, then schedules repeats at the
// configured interval. It returns once the timer is running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.refresh(ctx)

	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.refresh(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	s.cron.Start()

	log.WithField("interval", s.interval).Info("Scheduler started")
	return nil
}

// Stop halts future runs; an in-flight refresh completes.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	log.Info("Scheduled update started")
	start := time.Now()

	summaries, err := s.manager.GetAllSummaries(ctx, true, s.maxNews)
	if err != nil {
		log.WithError(err).Error("Scheduled update failed")
		return
	}

	for category, sum := range summaries {
		log.WithFields(log.Fields{
			"category":   category,
			"news_count": sum.NewsCount,
		}).Info("Category updated")
	}

	log.WithFields(log.Fields{
		"categories": len(summaries),
		"duration":   time.Since(start).Round(time.Second),
	}).Info("Scheduled update completed")
}
