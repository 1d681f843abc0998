// Package feeds fetches and parses the configured RSS/Atom sources.
package feeds

import (
	"context"
	"os"
	"sync"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsweb/internal/logger"
)

// Some sites block generic bots, so announce a browser-ish client.
const userAgent = "Mozilla/5.0 (compatible; NewswebBot/1.0; +https://github.com/deusflow/newsweb)"

// Source is a configured feed endpoint. Static configuration, never mutated
// after startup.
type Source struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// SourcesConfig is the YAML config structure
// sources:
//   - id: bbc_world
//     title: BBC World
//     url: https://...
type SourcesConfig struct {
	Sources []Source `yaml:"sources"`
}

// Default returns the built-in source list used when no sources file is
// configured.
func Default() []Source {
	return []Source{
		{ID: "bbc_world", Title: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
		{ID: "reuters_top", Title: "Reuters (top news)", URL: "https://feeds.reuters.com/reuters/topNews"},
		{ID: "theverge", Title: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
	}
}

// Load reads the feed source list from a YAML file.
func Load(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Sources, nil
}

// Result pairs a source with its parsed feed or its failure. A failed source
// carries a nil Feed and contributes zero items downstream.
type Result struct {
	Source Source
	Feed   *gofeed.Feed
	Err    error
}

// FetchAll fetches every source concurrently and returns once all of them
// have settled. Each fetch is fault-isolated: a network or parse error for
// one source never aborts the others. Result order is not defined.
func FetchAll(ctx context.Context, sources []Source) []Result {
	results := make(chan Result, len(sources))
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			feed, err := fetchOne(ctx, src)
			results <- Result{Source: src, Feed: feed, Err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Result, 0, len(sources))
	for r := range results {
		if r.Err != nil {
			logger.Warn("feed fetch failed", "source", r.Source.ID, "url", r.Source.URL, "err", r.Err)
		} else {
			logger.Debug("feed fetched", "source", r.Source.ID, "items", len(r.Feed.Items))
		}
		out = append(out, r)
	}
	return out
}

func fetchOne(ctx context.Context, src Source) (*gofeed.Feed, error) {
	// gofeed.Parser is not safe for concurrent use, so each fetch gets its own.
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return parser.ParseURLWithContext(src.URL, ctx)
}
