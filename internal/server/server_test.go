package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudiwiratama/central-news/internal/fetcher"
	"github.com/yudiwiratama/central-news/internal/metrics"
	"github.com/yudiwiratama/central-news/internal/server"
	"github.com/yudiwiratama/central-news/internal/store"
	"github.com/yudiwiratama/central-news/internal/summarizer"
	"github.com/yudiwiratama/central-news/internal/summary"
)

type stubFetcher struct{}

func (stubFetcher) FetchCategory(ctx context.Context, category string, maxItems int) []fetcher.NewsItem {
	return []fetcher.NewsItem{
		{Title: "Berita 1", Link: "https://example.com/1", Source: "Sumber Uji"},
		{Title: "Berita 2", Link: "https://example.com/2", Source: "Sumber Uji"},
	}
}

type stubGenerator struct{}

func (stubGenerator) Summarize(ctx context.Context, category string, items []fetcher.NewsItem) summarizer.CategorySummary {
	return summarizer.CategorySummary{
		Category:    category,
		Summary:     "ringkasan " + category,
		Highlights:  []string{"Berita 1"},
		NewsCount:   len(items),
		GeneratedAt: time.Now(),
		Model:       "stub",
	}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)

	m := metrics.New()
	mgr := summary.NewManager(stubFetcher{}, stubGenerator{}, st, m, []string{"ekonomi", "teknologi"}, 6*time.Hour)

	return &testApp{
		app: server.Server(&server.ServerConfig{
			Manager:   mgr,
			Metrics:   m,
			APIKeySet: true,
		}),
	}
}

type testApp struct {
	app *fiber.App
}

func (a *testApp) request(t *testing.T, method, target string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	resp, err := a.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body), "body: %s", data)
	return resp.StatusCode, body
}

func TestIndexListsEndpoints(t *testing.T) {
	a := newTestApp(t)
	status, body := a.request(t, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Central News - AI Summary API", body["name"])
	assert.Equal(t, "running", body["status"])
	assert.Contains(t, body, "endpoints")
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	status, body := a.request(t, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["manager_ready"])
	assert.Equal(t, true, body["api_key_set"])
}

func TestDegradedModeWithoutManager(t *testing.T) {
	a := &testApp{app: server.Server(&server.ServerConfig{
		Manager:   nil,
		Metrics:   metrics.New(),
		APIKeySet: false,
	})}

	status, body := a.request(t, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["manager_ready"])
	assert.Equal(t, false, body["api_key_set"])

	for _, target := range []string{"/api/summaries", "/api/summary/ekonomi", "/api/cache/info"} {
		status, body := a.request(t, http.MethodGet, target)
		assert.Equal(t, http.StatusInternalServerError, status, target)
		assert.Contains(t, body["error"], "not initialized", target)
	}
}

func TestGetCategorySummary(t *testing.T) {
	a := newTestApp(t)
	status, body := a.request(t, http.MethodGet, "/api/summary/teknologi")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "timestamp")

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "teknologi", data["category"])
	assert.Equal(t, "ringkasan teknologi", data["summary"])
	assert.Equal(t, float64(2), data["news_count"])
}

func TestGetAllSummaries(t *testing.T) {
	a := newTestApp(t)
	status, body := a.request(t, http.MethodGet, "/api/summaries")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Len(t, data, 2)
	assert.Contains(t, data, "ekonomi")
	assert.Contains(t, data, "teknologi")
}

func TestRefreshCategory(t *testing.T) {
	a := newTestApp(t)
	status, body := a.request(t, http.MethodPost, "/api/refresh/ekonomi")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Summary refreshed for ekonomi", body["message"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ekonomi", data["category"])
}

func TestCacheInfoAndClear(t *testing.T) {
	a := newTestApp(t)

	// Populate one entry.
	status, _ := a.request(t, http.MethodGet, "/api/summary/teknologi")
	require.Equal(t, http.StatusOK, status)

	status, body := a.request(t, http.MethodGet, "/api/cache/info")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["cache_size"])
	assert.NotEmpty(t, data["cache_dir"])

	cached := data["cached_categories"].([]interface{})
	require.Len(t, cached, 1)
	entry := cached[0].(map[string]interface{})
	assert.Equal(t, "teknologi", entry["category"])

	status, body = a.request(t, http.MethodPost, "/api/cache/clear?category=teknologi")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cache cleared for teknologi", body["message"])

	status, body = a.request(t, http.MethodPost, "/api/cache/clear")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "All cache cleared", body["message"])

	status, body = a.request(t, http.MethodGet, "/api/cache/info")
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["cache_size"])
}

func TestMalformedMaxNewsParameter(t *testing.T) {
	a := newTestApp(t)
	status, body := a.request(t, http.MethodGet, "/api/summary/ekonomi?max_news=abc")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, fmt.Sprint(body["error"]), "max_news")
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t)

	// One miss, one hit.
	a.request(t, http.MethodGet, "/api/summary/ekonomi")
	a.request(t, http.MethodGet, "/api/summary/ekonomi")

	status, body := a.request(t, http.MethodGet, "/api/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "cache_hits")
	assert.Contains(t, body, "cache_misses")
	assert.Contains(t, body, "summaries_generated")
}
