package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/niveshlab/nivesh/pkg/models"
	"github.com/niveshlab/nivesh/pkg/utils"
)

// RSSSource represents an Indian financial news feed.
type RSSSource struct {
	Name string
	URL  string
}

// DefaultRSSSources lists the Indian financial news feeds used when no
// Marketaux key is configured.
var DefaultRSSSources = []RSSSource{
	{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/rss/marketreports.xml"},
	{Name: "Economic Times Markets", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{Name: "LiveMint Markets", URL: "https://www.livemint.com/rss/markets"},
}

// RSSNews implements the fallback news source over public RSS feeds.
type RSSNews struct {
	sources []RSSSource
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewRSSNews creates the fallback news source with the default feeds.
func NewRSSNews() *RSSNews {
	return NewRSSNewsWithSources(DefaultRSSSources)
}

// NewRSSNewsWithSources creates a fallback news source with custom feeds.
func NewRSSNewsWithSources(sources []RSSSource) *RSSNews {
	return &RSSNews{
		sources: sources,
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (r *RSSNews) Name() string { return "Indian News RSS" }

// GetStockNews returns feed items mentioning the symbol, newest first.
func (r *RSSNews) GetStockNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	base := utils.BaseSymbol(symbol)

	cacheKey := fmt.Sprintf("rss:%s:%d", base, limit)
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.([]models.NewsArticle), nil
	}

	var all []models.NewsArticle
	for _, src := range r.sources {
		articles, err := r.fetchFeed(ctx, src)
		if err != nil {
			// Non-critical: skip failed feeds.
			continue
		}
		all = append(all, articles...)
	}
	if len(all) == 0 {
		return nil, ErrEmptyResponse
	}

	keyword := strings.ToLower(base)
	var matched []models.NewsArticle
	for _, a := range all {
		content := strings.ToLower(a.Title + " " + a.Summary)
		if strings.Contains(content, keyword) {
			matched = append(matched, a)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	r.cache.Set(cacheKey, matched)
	return matched, nil
}

// fetchFeed parses one RSS feed into articles.
func (r *RSSNews) fetchFeed(ctx context.Context, src RSSSource) ([]models.NewsArticle, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := r.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   item.Title,
			URL:     item.Link,
			Source:  src.Name,
			Summary: cleanHTML(item.Description),
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
