package models

import (
	"strconv"
	"time"
)

// OHLCV represents a single daily bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// NewsArticle represents a single news headline from a provider.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Headline renders the article in the display form used in responses
// and prompts: "<title> (<YYYY-MM-DD>)".
func (a NewsArticle) Headline() string {
	if a.PublishedAt.IsZero() {
		return a.Title
	}
	return a.Title + " (" + a.PublishedAt.Format("2006-01-02") + ")"
}

// trimFloat renders a float without trailing zeros (1234.5 → "1234.5",
// 42 → "42").
func trimFloat(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
