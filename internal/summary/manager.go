package summary

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/fetcher"
	"github.com/yudiwiratama/central-news/internal/metrics"
	"github.com/yudiwiratama/central-news/internal/store"
	"github.com/yudiwiratama/central-news/internal/summarizer"
)

// Fetcher retrieves normalized news items for a category.
type Fetcher interface {
	FetchCategory(ctx context.Context, category string, maxItems int) []fetcher.NewsItem
}

// Generator produces a category summary from news items.
type Generator interface {
	Summarize(ctx context.Context, category string, items []fetcher.NewsItem) summarizer.CategorySummary
}

// Manager decides between serving a cached category summary and running the
// fetch+summarize pipeline, and owns cache invalidation. Freshness is
// evaluated lazily on read; there is no background sweep.
type Manager struct {
	fetcher    Fetcher
	generator  Generator
	store      *store.Store
	metrics    *metrics.Metrics
	categories []string
	ttl        time.Duration

	// Per-category refresh locks so concurrent misses for the same
	// category issue at most one model call.
	mu       sync.Mutex
	inFlight map[string]*sync.Mutex
}

func NewManager(f Fetcher, g Generator, st *store.Store, m *metrics.Metrics, categories []string, cacheDuration time.Duration) *Manager {
	return &Manager{
		fetcher:    f,
		generator:  g,
		store:      st,
		metrics:    m,
		categories: categories,
		ttl:        cacheDuration,
		inFlight:   make(map[string]*sync.Mutex),
	}
}

func cacheKey(category string) string {
	return "summary_" + category
}

// Categories returns the registered category identifiers.
func (m *Manager) Categories() []string {
	return m.categories
}

// GetSummary returns the cached summary for category when it is younger than
// the cache duration; otherwise it fetches news, generates a new summary and
// caches it under the configured time to live. forceRefresh bypasses the
// freshness check entirely.
func (m *Manager) GetSummary(ctx context.Context, category string, forceRefresh bool, maxNews int) (summarizer.CategorySummary, error) {
	key := cacheKey(category)

	if !forceRefresh {
		if cached, ok := m.cached(key); ok {
			m.metrics.IncrementCacheHits()
			log.WithFields(log.Fields{
				"category": category,
				"age":      time.Since(cached.GeneratedAt).Round(time.Second),
			}).Debug("Serving cached summary")
			return cached, nil
		}
	}

	lock := m.refreshLock(category)
	lock.Lock()
	defer lock.Unlock()

	// A concurrent request may have refreshed while we waited for the lock.
	if !forceRefresh {
		if cached, ok := m.cached(key); ok {
			m.metrics.IncrementCacheHits()
			return cached, nil
		}
	}

	m.metrics.IncrementCacheMisses()
	log.WithField("category", category).Info("Generating new summary")

	items := m.fetcher.FetchCategory(ctx, category, maxNews)
	result := m.generator.Summarize(ctx, category, items)
	if result.Error != "" {
		m.metrics.IncrementModelErrors()
	} else {
		m.metrics.IncrementSummariesGenerated()
	}

	// Error results are cached like any other: a degraded summary stays
	// served until the TTL passes or the cache is cleared explicitly.
	if err := m.store.Set(key, result, m.ttl); err != nil {
		return summarizer.CategorySummary{}, fmt.Errorf("failed to cache summary for %s: %w", category, err)
	}
	return result, nil
}

// GetAllSummaries refreshes every registered category independently; a
// failure in one category does not stop the others.
func (m *Manager) GetAllSummaries(ctx context.Context, forceRefresh bool, maxNews int) (map[string]summarizer.CategorySummary, error) {
	summaries := make(map[string]summarizer.CategorySummary, len(m.categories))

	var firstErr error
	for _, category := range m.categories {
		s, err := m.GetSummary(ctx, category, forceRefresh, maxNews)
		if err != nil {
			log.WithFields(log.Fields{
				"category": category,
				"error":    err,
			}).Error("Failed to refresh category")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		summaries[category] = s
	}

	m.metrics.SetLastRefresh()

	if len(summaries) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return summaries, nil
}

// ClearCache removes the cached summary for one category. Regeneration
// happens on the next read, not here.
func (m *Manager) ClearCache(category string) error {
	log.WithField("category", category).Info("Cache cleared")
	return m.store.Delete(cacheKey(category))
}

// ClearAll removes every cached summary.
func (m *Manager) ClearAll() error {
	log.Info("All cache cleared")
	return m.store.Clear()
}

// CachedCategory describes one live cache entry for introspection.
type CachedCategory struct {
	Category  string  `json:"category"`
	AgeHours  float64 `json:"age_hours"`
	NewsCount int     `json:"news_count"`
}

// CacheInfo is the cache introspection payload.
type CacheInfo struct {
	CacheSize        int              `json:"cache_size"`
	CacheDir         string           `json:"cache_dir"`
	CachedCategories []CachedCategory `json:"cached_categories"`
}

// GetCacheInfo reports cache statistics without touching absent or evicted
// entries.
func (m *Manager) GetCacheInfo() CacheInfo {
	info := CacheInfo{
		CacheSize:        m.store.Len(),
		CacheDir:         m.store.Dir(),
		CachedCategories: []CachedCategory{},
	}

	for _, category := range m.categories {
		var cached summarizer.CategorySummary
		if !m.store.Get(cacheKey(category), &cached) {
			continue
		}
		age := time.Since(cached.GeneratedAt).Hours()
		info.CachedCategories = append(info.CachedCategories, CachedCategory{
			Category:  category,
			AgeHours:  math.Round(age*100) / 100,
			NewsCount: cached.NewsCount,
		})
	}

	return info
}

// cached returns the stored summary when it is still fresh. The store
// enforces its own expiry; the generated_at check keeps the freshness policy
// correct even if the entry was written with a longer TTL.
func (m *Manager) cached(key string) (summarizer.CategorySummary, bool) {
	var cached summarizer.CategorySummary
	if !m.store.Get(key, &cached) {
		return summarizer.CategorySummary{}, false
	}
	if time.Since(cached.GeneratedAt) >= m.ttl {
		return summarizer.CategorySummary{}, false
	}
	return cached, true
}

func (m *Manager) refreshLock(category string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.inFlight[category]
	if !ok {
		lock = &sync.Mutex{}
		m.inFlight[category] = lock
	}
	return lock
}
