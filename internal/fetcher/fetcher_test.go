package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudiwiratama/central-news/internal/feeds"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
<link>https://example.com</link>
<item>
<title>Berita Pertama</title>
<link>https://example.com/1</link>
<description><![CDATA[<p>Hello&nbsp;&amp;&nbsp;World</p>]]></description>
<pubDate>Mon, 02 Jan 2006 15:04:05 +0700</pubDate>
</item>
<item>
<title>Berita Kedua</title>
<link>https://example.com/2</link>
<description><![CDATA[Deskripsi   dengan    spasi]]></description>
</item>
<item>
<title>Tanpa Tautan</title>
<description>entry without a link</description>
</item>
<item>
<title>Berita Ketiga</title>
<link>https://example.com/3</link>
</item>
</channel>
</rss>`

func serveRSS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tags stripped and entities decoded", "<p>Hello&nbsp;&amp;&nbsp;World</p>", "Hello & World"},
		{"plain text unchanged", "Berita biasa", "Berita biasa"},
		{"whitespace collapsed", "satu \n\n  dua\t tiga", "satu dua tiga"},
		{"double encoded entity", "x&amp;nbsp;y", "x y"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHTML(tt.in))
		})
	}
}

func TestFetchCategoryNormalizesEntries(t *testing.T) {
	srv := serveRSS(t, rssFixture)
	registry := feeds.Registry{
		"teknologi": {{URL: srv.URL, Source: "Feed A"}},
	}

	f := New(registry, 5*time.Second)
	items := f.FetchCategory(context.Background(), "teknologi", 20)

	// The entry without a link is discarded.
	require.Len(t, items, 3)

	assert.Equal(t, "Berita Pertama", items[0].Title)
	assert.Equal(t, "Hello & World", items[0].Description)
	assert.Equal(t, "https://example.com/1", items[0].Link)
	assert.Equal(t, "Mon, 02 Jan 2006 15:04:05 +0700", items[0].PubDate)
	assert.Equal(t, "Feed A", items[0].Source)

	assert.Equal(t, "Deskripsi dengan spasi", items[1].Description)
}

func TestFetchCategoryCapsItemsPerFeed(t *testing.T) {
	srv := serveRSS(t, rssFixture)
	registry := feeds.Registry{
		"teknologi": {{URL: srv.URL, Source: "Feed A"}},
	}

	f := New(registry, 5*time.Second)
	items := f.FetchCategory(context.Background(), "teknologi", 2)

	require.Len(t, items, 2)
	assert.Equal(t, "Berita Pertama", items[0].Title)
	assert.Equal(t, "Berita Kedua", items[1].Title)
}

func TestFetchCategoryPartialFailure(t *testing.T) {
	good := serveRSS(t, rssFixture)
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)

	registry := feeds.Registry{
		"ekonomi": {
			{URL: bad.URL, Source: "Broken"},
			{URL: good.URL, Source: "Healthy"},
		},
	}

	f := New(registry, 5*time.Second)
	items := f.FetchCategory(context.Background(), "ekonomi", 20)

	// The broken feed contributes nothing but does not abort the rest.
	require.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, "Healthy", item.Source)
	}
}

func TestFetchCategoryUnknownCategory(t *testing.T) {
	f := New(feeds.Registry{}, 5*time.Second)
	items := f.FetchCategory(context.Background(), "olahraga", 20)
	assert.Empty(t, items)
}
