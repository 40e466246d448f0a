package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/niveshlab/nivesh/pkg/models"
)

// yahooModules lists the quoteSummary modules fetched for the
// fundamentals fallback path.
const yahooModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"

// Yahoo implements fundamentals and historical-price fetching from the
// Yahoo Finance public API.
type Yahoo struct {
	baseURL string
	client  *http.Client
	cache   *Cache
	limiter *RateLimiter
}

// NewYahoo creates a new Yahoo Finance data source.
func NewYahoo() *Yahoo {
	return &Yahoo{
		baseURL: "https://query1.finance.yahoo.com",
		client:  HTTPClient,
		cache:   NewCache(5 * time.Minute),
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
	}
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

// QuoteSummary holds the raw quoteSummary payload: module name → field
// name → value. Numeric fields usually arrive as {"raw": n, "fmt": s}
// objects; Field flattens that wrapping.
type QuoteSummary map[string]map[string]any

// Field returns the raw value for a module/field pair, unwrapping the
// {"raw": ..., "fmt": ...} envelope Yahoo uses for numeric fields.
func (qs QuoteSummary) Field(module, field string) (any, bool) {
	m, ok := qs[module]
	if !ok {
		return nil, false
	}
	v, ok := m[field]
	if !ok || v == nil {
		return nil, false
	}
	if wrapped, ok := v.(map[string]any); ok {
		raw, ok := wrapped["raw"]
		if !ok || raw == nil {
			return nil, false
		}
		return raw, true
	}
	return v, true
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummary `json:"result"`
		Error  *yahooError    `json:"error"`
	} `json:"quoteSummary"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooError        `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Timestamp  []int64         `json:"timestamp"`
	Indicators yahooIndicators `json:"indicators"`
}

type yahooIndicators struct {
	Quote []yahooOHLCV `json:"quote"`
}

type yahooOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetQuoteSummary fetches the configured quoteSummary modules for a
// symbol. The symbol must carry its exchange suffix (.NS/.BO).
func (y *Yahoo) GetQuoteSummary(ctx context.Context, symbol string) (QuoteSummary, error) {
	cacheKey := "summary:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(QuoteSummary), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s", y.baseURL, symbol, yahooModules)
	data, err := getBody(ctx, y.client, url, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, err)
	}

	var resp yahooSummaryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo quoteSummary: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	summary := resp.QuoteSummary.Result[0]
	y.cache.Set(cacheKey, summary)
	return summary, nil
}

// GetDailyHistory returns daily OHLCV candles for the given date range.
func (y *Yahoo) GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error) {
	cacheKey := fmt.Sprintf("hist:%s:%d:%d", symbol, from.Unix(), to.Unix())
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.([]models.OHLCV), nil
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, symbol, from.Unix(), to.Unix(),
	)
	data, err := getBody(ctx, y.client, url, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo chart: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	candles := parseYahooCandles(resp.Chart.Result[0])
	y.cache.SetWithTTL(cacheKey, candles, 15*time.Minute)
	return candles, nil
}

// --- Helpers ---

// parseYahooCandles flattens the parallel-array chart payload into
// candles, tolerating nil entries (market holidays leave gaps).
func parseYahooCandles(result yahooChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := models.OHLCV{Timestamp: time.Unix(ts, 0)}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			c.Close = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}
