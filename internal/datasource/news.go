package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/seenimoa/finmcp/internal/config"
	"github.com/seenimoa/finmcp/internal/infra"
	"github.com/seenimoa/finmcp/internal/metrics"
	"github.com/seenimoa/finmcp/pkg/models"
)

// DefaultNewsURL is the Yahoo Finance headline feed; %s is the symbol.
const DefaultNewsURL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// News implements NewsFeed over a per-symbol RSS feed.
type News struct {
	feedURL string
	parser  *gofeed.Parser
	limiter *infra.RateLimiter
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewNews creates a headline source for the configured feed URL.
func NewNews(cfg config.ProviderConfig, m *metrics.Metrics, log zerolog.Logger) *News {
	feedURL := cfg.NewsURL
	if feedURL == "" {
		feedURL = DefaultNewsURL
	}
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = &http.Client{Timeout: cfg.HTTPTimeout}

	return &News{
		feedURL: feedURL,
		parser:  parser,
		limiter: infra.NewRateLimiter(2, 500*time.Millisecond), // conservative: 2 req/s
		metrics: m,
		log:     log.With().Str("component", "news").Logger(),
	}
}

// Headlines returns up to limit recent headlines for symbol, newest first.
func (n *News) Headlines(ctx context.Context, symbol string, limit int) ([]models.Headline, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, Classify(err)
	}

	start := time.Now()
	feed, err := n.parser.ParseURLWithContext(n.feedFor(symbol), ctx)
	if err != nil {
		err = Classify(fmt.Errorf("parse RSS for %s: %w", symbol, err))
		n.metrics.ObserveFetch("headlines", outcome(err), time.Since(start))
		return nil, err
	}
	n.metrics.ObserveFetch("headlines", "ok", time.Since(start))

	source := strings.TrimSpace(feed.Title)
	out := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		h := models.Headline{
			Title:   title,
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = item.PublishedParsed.UTC()
		}
		out = append(out, h)
	}

	sortHeadlinesByDate(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (n *News) feedFor(symbol string) string {
	if !strings.Contains(n.feedURL, "%s") {
		return n.feedURL
	}
	return fmt.Sprintf(n.feedURL, url.QueryEscape(symbol))
}

// --- Internal helpers ---

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortHeadlinesByDate sorts newest first; undated items keep feed order at
// the end.
func sortHeadlinesByDate(items []models.Headline) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}
