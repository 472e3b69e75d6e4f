package feeds

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Feed is one syndication source inside a category.
type Feed struct {
	URL    string `yaml:"url"`
	Source string `yaml:"source"`
}

// Registry maps category identifiers to their feed sources. It is built once
// at startup and never mutated afterwards.
type Registry map[string][]Feed

// Default returns the built-in category registry.
func Default() Registry {
	return Registry{
		"hukum_politik": {
			{URL: "https://www.antaranews.com/rss/politik.xml", Source: "Antara News Politik"},
			{URL: "https://www.antaranews.com/rss/hukum.xml", Source: "Antara News Hukum"},
		},
		"ekonomi": {
			{URL: "https://djpb.kemenkeu.go.id/portal/id/berita.feed?type=rss", Source: "DJPB Kemenkeu"},
			{URL: "https://www.antaranews.com/rss/ekonomi.xml", Source: "Antara News Ekonomi"},
			{URL: "https://www.cnbcindonesia.com/market/rss", Source: "CNBC Indonesia Market"},
		},
		"pendidikan": {
			{URL: "https://www.detik.com/edu/rss", Source: "Detik Edu"},
			{URL: "https://edukasi.sindonews.com/rss", Source: "Sindonews Edukasi"},
		},
		"kesehatan": {
			{URL: "https://kemkes.go.id/id/rss/article/kegiatan-kemenkes", Source: "Kementerian Kesehatan"},
			{URL: "https://health.detik.com/rss", Source: "Detik Health"},
		},
		"teknologi": {
			{URL: "https://www.cnbcindonesia.com/tech/rss", Source: "CNBC Indonesia Tech"},
			{URL: "https://www.antaranews.com/rss/tekno.xml", Source: "Antara News Tekno"},
		},
		"nasional": {
			{URL: "https://rss.tempo.co/nasional", Source: "Tempo Nasional"},
			{URL: "https://www.cnnindonesia.com/nasional/rss", Source: "CNN Indonesia Nasional"},
		},
	}
}

// fileConfig is the YAML config structure:
//
// categories:
//   ekonomi:
//     - url: https://...
//       source: Some Outlet
type fileConfig struct {
	Categories Registry `yaml:"categories"`
}

// LoadFile reads a registry from a YAML file, replacing the built-in one.
func LoadFile(path string) (Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg fileConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("feeds config %s defines no categories", path)
	}
	return cfg.Categories, nil
}

// Categories returns the registered category identifiers in stable order.
func (r Registry) Categories() []string {
	categories := make([]string, 0, len(r))
	for category := range r {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Lookup returns the feed sources registered under category.
func (r Registry) Lookup(category string) ([]Feed, bool) {
	sources, ok := r[category]
	return sources, ok
}
