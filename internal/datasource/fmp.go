package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// FMP implements company-profile fetching from Financial Modeling Prep,
// the primary fundamentals provider. It is only consulted when an API
// key is configured.
type FMP struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *RateLimiter
}

// NewFMP creates a Financial Modeling Prep source. An empty key yields
// an unconfigured source whose calls fail with ErrNoAPIKey.
func NewFMP(apiKey string) *FMP {
	return &FMP{
		baseURL: "https://financialmodelingprep.com/api/v3",
		apiKey:  apiKey,
		client:  HTTPClient,
		limiter: NewRateLimiter(4, time.Second),
	}
}

// Name returns the data source name.
func (f *FMP) Name() string { return "Financial Modeling Prep" }

// Configured reports whether an API key is set.
func (f *FMP) Configured() bool { return f.apiKey != "" }

// FMPProfile is the company profile record returned by the /profile
// endpoint. Numeric fields are pointers so that absent values stay
// distinguishable from zero.
type FMPProfile struct {
	Symbol       string   `json:"symbol"`
	CompanyName  string   `json:"companyName"`
	Sector       string   `json:"sector"`
	Industry     string   `json:"industry"`
	Price        *float64 `json:"price"`
	MarketCap    *float64 `json:"mktCap"`
	PE           *float64 `json:"pe"`
	PriceToBook  *float64 `json:"pb"`
	DebtToEquity *float64 `json:"debtToEquity"`
	Beta         *float64 `json:"beta"`
	LastDividend *float64 `json:"lastDiv"`
	AvgVolume    *float64 `json:"volAvg"`
}

// GetProfile fetches the company profile for a base symbol (exchange
// suffix already stripped).
func (f *FMP) GetProfile(ctx context.Context, symbol string) (*FMPProfile, error) {
	if f.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/profile/%s?apikey=%s", f.baseURL, symbol, f.apiKey)
	data, err := getBody(ctx, f.client, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, err)
	}

	var profiles []FMPProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse fmp profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, symbol)
	}

	return &profiles[0], nil
}
