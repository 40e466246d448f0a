// Package fundamentals assembles the canonical metric dictionary for a
// symbol from the primary provider (Financial Modeling Prep) with a
// fallback to Yahoo Finance.
package fundamentals

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/niveshlab/nivesh/internal/datasource"
	"github.com/niveshlab/nivesh/pkg/models"
	"github.com/niveshlab/nivesh/pkg/utils"
)

// PrimaryProvider is the credentialed fundamentals provider consulted
// first. When it returns a usable profile the fallback is skipped.
type PrimaryProvider interface {
	Configured() bool
	GetProfile(ctx context.Context, symbol string) (*datasource.FMPProfile, error)
}

// SecondaryProvider is the keyless fallback provider.
type SecondaryProvider interface {
	GetQuoteSummary(ctx context.Context, symbol string) (datasource.QuoteSummary, error)
	GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error)
}

// Fetcher fetches and normalizes fundamentals. Fetch never returns an
// error: total failure yields an empty metric dictionary.
type Fetcher struct {
	primary   PrimaryProvider
	secondary SecondaryProvider

	// sleep and jitter let tests skip the real fallback delay.
	sleep  func(time.Duration)
	jitter func() float64
	now    func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithSleep overrides the fallback delay function. Used in tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(f *Fetcher) { f.sleep = sleep }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// NewFetcher creates a fundamentals fetcher.
func NewFetcher(primary PrimaryProvider, secondary SecondaryProvider, opts ...Option) *Fetcher {
	f := &Fetcher{
		primary:   primary,
		secondary: secondary,
		sleep:     time.Sleep,
		jitter:    rand.Float64,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the canonical metrics for an exchange-qualified symbol.
// The primary provider wins wholly when configured and responsive;
// otherwise the fallback path supplies the record. An empty dictionary
// signals total unavailability.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) *models.Metrics {
	symbol = utils.NormalizeSymbol(symbol)

	if f.primary != nil && f.primary.Configured() {
		profile, err := f.primary.GetProfile(ctx, utils.BaseSymbol(symbol))
		if err == nil && profile != nil {
			return f.fromProfile(symbol, profile)
		}
		// Fall through to the secondary provider on any primary failure.
	}

	// Courtesy delay before hitting the keyless provider: 3-5s with
	// jitter, matching its informal rate limits.
	f.sleep(3*time.Second + time.Duration(f.jitter()*2*float64(time.Second)))

	summary, err := f.secondary.GetQuoteSummary(ctx, symbol)
	if err != nil {
		return models.NewMetrics()
	}
	return f.fromQuoteSummary(ctx, symbol, summary)
}

// fromProfile maps a Financial Modeling Prep profile onto canonical
// metric names.
func (f *Fetcher) fromProfile(symbol string, p *datasource.FMPProfile) *models.Metrics {
	m := models.NewMetrics()

	name := coalesceStr(p.CompanyName, utils.BaseSymbol(symbol))
	m.SetText("Name", name)
	setIfText(m, "Sector", p.Sector)
	setIfText(m, "Industry", p.Industry)
	setIfNum(m, "Current Price", p.Price)
	setIfNum(m, "Market Cap", p.MarketCap)
	setIfNum(m, "PE Ratio", p.PE)
	setIfNum(m, "Price to Book", p.PriceToBook)
	setIfNum(m, "Debt to Equity", p.DebtToEquity)
	setIfNum(m, "Beta", p.Beta)
	setIfNum(m, "Last Dividend", p.LastDividend)
	setIfNum(m, "Average Volume", p.AvgVolume)

	return m
}

// quoteSummaryFields fixes the canonical key order and where each key
// is looked up in the Yahoo payload. Later (module, field) pairs are
// consulted when earlier ones are absent.
var quoteSummaryFields = []struct {
	key     string
	lookups [][2]string
}{
	{"Sector", [][2]string{{"assetProfile", "sector"}}},
	{"Industry", [][2]string{{"assetProfile", "industry"}}},
	{"Current Price", [][2]string{{"financialData", "currentPrice"}, {"price", "regularMarketPrice"}}},
	{"52 Week High", [][2]string{{"summaryDetail", "fiftyTwoWeekHigh"}}},
	{"52 Week Low", [][2]string{{"summaryDetail", "fiftyTwoWeekLow"}}},
	{"Market Cap", [][2]string{{"price", "marketCap"}, {"summaryDetail", "marketCap"}}},
	{"PE Ratio", [][2]string{{"summaryDetail", "trailingPE"}}},
	{"Forward PE", [][2]string{{"summaryDetail", "forwardPE"}, {"defaultKeyStatistics", "forwardPE"}}},
	{"Price to Book", [][2]string{{"defaultKeyStatistics", "priceToBook"}}},
	{"Price to Sales", [][2]string{{"summaryDetail", "priceToSalesTrailing12Months"}}},
	{"Enterprise Value", [][2]string{{"defaultKeyStatistics", "enterpriseValue"}}},
	{"Return on Equity", [][2]string{{"financialData", "returnOnEquity"}}},
	{"Return on Assets", [][2]string{{"financialData", "returnOnAssets"}}},
	{"Profit Margins", [][2]string{{"financialData", "profitMargins"}, {"defaultKeyStatistics", "profitMargins"}}},
	{"Operating Margins", [][2]string{{"financialData", "operatingMargins"}}},
	{"Earnings Growth", [][2]string{{"financialData", "earningsGrowth"}}},
	{"Revenue Growth", [][2]string{{"financialData", "revenueGrowth"}}},
	{"Quarterly Earnings Growth", [][2]string{{"defaultKeyStatistics", "earningsQuarterlyGrowth"}}},
	{"Debt to Equity", [][2]string{{"financialData", "debtToEquity"}}},
	{"Current Ratio", [][2]string{{"financialData", "currentRatio"}}},
	{"Quick Ratio", [][2]string{{"financialData", "quickRatio"}}},
	{"Dividend Yield", [][2]string{{"summaryDetail", "dividendYield"}}},
	{"Payout Ratio", [][2]string{{"summaryDetail", "payoutRatio"}}},
	{"Analyst Recommendation", [][2]string{{"financialData", "recommendationKey"}}},
	{"Number of Analysts", [][2]string{{"financialData", "numberOfAnalystOpinions"}}},
	{"Beta", [][2]string{{"summaryDetail", "beta"}, {"defaultKeyStatistics", "beta"}}},
	{"50 Day Average", [][2]string{{"summaryDetail", "fiftyDayAverage"}}},
	{"200 Day Average", [][2]string{{"summaryDetail", "twoHundredDayAverage"}}},
	{"Volume", [][2]string{{"summaryDetail", "volume"}}},
	{"Average Volume", [][2]string{{"summaryDetail", "averageVolume"}}},
}

// priceChangeWindows are the derived trend metrics and their lookback
// in months.
var priceChangeWindows = []struct {
	key    string
	months int
}{
	{"1 Month Change (%)", 1},
	{"3 Month Change (%)", 3},
	{"1 Year Change (%)", 12},
}

// fromQuoteSummary maps the Yahoo quoteSummary payload onto canonical
// metric names and derives trend metrics from historical closes.
func (f *Fetcher) fromQuoteSummary(ctx context.Context, symbol string, qs datasource.QuoteSummary) *models.Metrics {
	m := models.NewMetrics()

	if name, ok := qs.Field("price", "shortName"); ok {
		setLoose(m, "Name", name)
	}
	if _, present := m.Get("Name"); !present {
		m.SetText("Name", symbol)
	}

	for _, fd := range quoteSummaryFields {
		for _, lookup := range fd.lookups {
			if v, ok := qs.Field(lookup[0], lookup[1]); ok {
				if setLoose(m, fd.key, v) {
					break
				}
			}
		}
	}

	// Trend metrics default to zero when the history is empty; callers
	// cannot tell "flat" from "no data" here.
	to := f.now()
	for _, w := range priceChangeWindows {
		m.SetNumber(w.key, f.priceChange(ctx, symbol, to.AddDate(0, -w.months, 0), to))
	}

	return m
}

// priceChange computes the close-to-close percentage change over a
// window, rounded to two decimals. Empty or failed history yields zero.
func (f *Fetcher) priceChange(ctx context.Context, symbol string, from, to time.Time) float64 {
	candles, err := f.secondary.GetDailyHistory(ctx, symbol, from, to)
	if err != nil || len(candles) == 0 {
		return 0
	}
	first := candles[0].Close
	last := candles[len(candles)-1].Close
	if first == 0 {
		return 0
	}
	change := (last - first) / first * 100
	return math.Round(change*100) / 100
}

// --- Value normalization ---

// notAvailableSentinels are provider values that mean "no data" and
// must be dropped rather than stored.
var notAvailableSentinels = map[string]bool{
	"":     true,
	"n/a":  true,
	"na":   true,
	"null": true,
	"none": true,
	"-":    true,
}

// setLoose stores a loosely typed provider value under a canonical key,
// dropping not-available sentinels and coercing numeric-looking strings
// to numbers. Reports whether a value was stored.
func setLoose(m *models.Metrics, key string, v any) bool {
	switch t := v.(type) {
	case float64:
		m.SetNumber(key, t)
		return true
	case int:
		m.SetNumber(key, float64(t))
		return true
	case int64:
		m.SetNumber(key, float64(t))
		return true
	case bool:
		m.SetText(key, strconv.FormatBool(t))
		return true
	case string:
		s := strings.TrimSpace(t)
		if notAvailableSentinels[strings.ToLower(s)] {
			return false
		}
		if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
			m.SetNumber(key, n)
			return true
		}
		m.SetText(key, s)
		return true
	default:
		return false
	}
}

func setIfText(m *models.Metrics, key, v string) {
	s := strings.TrimSpace(v)
	if s == "" || notAvailableSentinels[strings.ToLower(s)] {
		return
	}
	m.SetText(key, s)
}

func setIfNum(m *models.Metrics, key string, v *float64) {
	if v == nil {
		return
	}
	m.SetNumber(key, *v)
}

func coalesceStr(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
