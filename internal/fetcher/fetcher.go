package fetcher

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/feeds"
)

// Some feed providers reject requests with tool-like identifiers.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// NewsItem is a single normalized feed entry.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PubDate     string `json:"pub_date"`
	Source      string `json:"source"`
}

// Fetcher downloads and normalizes the feeds registered per category.
type Fetcher struct {
	registry feeds.Registry
	parser   *gofeed.Parser
}

func New(registry feeds.Registry, timeout time.Duration) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	parser.Client = &http.Client{Timeout: timeout}

	return &Fetcher{
		registry: registry,
		parser:   parser,
	}
}

// FetchCategory returns the items of every feed registered under category,
// at most maxItems per feed. An unknown category yields no items, and a
// failing feed does not stop the remaining ones: aggregation is best effort.
func (f *Fetcher) FetchCategory(ctx context.Context, category string, maxItems int) []NewsItem {
	sources, ok := f.registry.Lookup(category)
	if !ok {
		log.WithField("category", category).Warn("Unknown category requested")
		return nil
	}

	var all []NewsItem
	for _, src := range sources {
		items, err := f.fetchFeed(ctx, src, maxItems)
		if err != nil {
			log.WithFields(log.Fields{
				"source": src.Source,
				"error":  err,
			}).Warn("Feed fetch failed")
			continue
		}
		all = append(all, items...)
	}

	log.WithFields(log.Fields{
		"category": category,
		"count":    len(all),
	}).Debug("Fetched category")
	return all
}

func (f *Fetcher) fetchFeed(ctx context.Context, src feeds.Feed, maxItems int) ([]NewsItem, error) {
	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if maxItems > 0 && len(entries) > maxItems {
		entries = entries[:maxItems]
	}

	items := make([]NewsItem, 0, len(entries))
	for _, entry := range entries {
		item := NewsItem{
			Title:       strings.TrimSpace(entry.Title),
			Description: CleanHTML(entry.Description),
			Link:        entry.Link,
			PubDate:     entry.Published,
			Source:      src.Source,
		}
		// Entries without a title or link are unusable downstream.
		if item.Title == "" || item.Link == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// CleanHTML strips markup from feed text, decodes the common HTML entities
// and collapses runs of whitespace to single spaces.
func CleanHTML(text string) string {
	if text == "" {
		return ""
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		text = doc.Text()
	}

	// Feeds occasionally double-encode entities; the parser only decodes
	// one level.
	text = entityReplacer.Replace(text)

	return strings.Join(strings.Fields(text), " ")
}
