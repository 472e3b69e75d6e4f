package metrics

import (
	"sync"
	"time"
)

// Metrics tracks refresh workflow activity.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	CacheHits          int64
	CacheMisses        int64
	SummariesGenerated int64
	ModelErrors        int64

	// Status
	LastRefreshTime time.Time
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) IncrementModelErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelErrors++
}

func (m *Metrics) SetLastRefresh() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRefreshTime = time.Now()
}

func (m *Metrics) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"cache_hits":          m.CacheHits,
		"cache_misses":        m.CacheMisses,
		"summaries_generated": m.SummariesGenerated,
		"model_errors":        m.ModelErrors,
		"last_refresh_time":   m.LastRefreshTime.Format(time.RFC3339),
	}
}
