package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/niveshlab/nivesh/pkg/models"
)

// Marketaux implements stock-news fetching from the Marketaux API.
type Marketaux struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *RateLimiter
}

// NewMarketaux creates a Marketaux news source.
func NewMarketaux(apiKey string) *Marketaux {
	return &Marketaux{
		baseURL: "https://api.marketaux.com/v1",
		apiKey:  apiKey,
		client:  HTTPClient,
		limiter: NewRateLimiter(2, time.Second),
	}
}

// Name returns the data source name.
func (m *Marketaux) Name() string { return "Marketaux" }

// Configured reports whether an API key is set.
func (m *Marketaux) Configured() bool { return m.apiKey != "" }

type marketauxResponse struct {
	Data []marketauxArticle `json:"data"`
}

type marketauxArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"` // e.g. "2025-08-12T09:30:00.000000Z"
}

// GetStockNews returns recent articles for a base symbol, in provider
// order (most recent first as Marketaux returns them).
func (m *Marketaux) GetStockNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	if m.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbols", symbol)
	q.Set("filter_entities", "true")
	q.Set("language", "en")
	q.Set("api_token", m.apiKey)

	data, err := getBody(ctx, m.client, m.baseURL+"/news/all?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("marketaux news %s: %w", symbol, err)
	}

	var resp marketauxResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse marketaux news: %w", err)
	}

	articles := make([]models.NewsArticle, 0, limit)
	for _, a := range resp.Data {
		if limit > 0 && len(articles) >= limit {
			break
		}
		article := models.NewsArticle{
			Title:   a.Title,
			URL:     a.URL,
			Source:  a.Source,
			Summary: a.Description,
		}
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			article.PublishedAt = ts
		} else if len(a.PublishedAt) >= 10 {
			// Fall back to the date prefix when the timestamp format drifts.
			if day, err := time.Parse("2006-01-02", a.PublishedAt[:10]); err == nil {
				article.PublishedAt = day
			}
		}
		articles = append(articles, article)
	}

	return articles, nil
}
