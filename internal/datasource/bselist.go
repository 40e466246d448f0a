package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BSEList fetches the listed scrip directory from the BSE India API.
type BSEList struct {
	baseURL string
	client  *http.Client
	limiter *RateLimiter
}

// NewBSEList creates a BSE symbol-list source.
func NewBSEList() *BSEList {
	return &BSEList{
		baseURL: "https://api.bseindia.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: NewRateLimiter(1, time.Second),
	}
}

// Name returns the data source name.
func (b *BSEList) Name() string { return "BSE India API" }

// bseScripResponse is the ListedScripData envelope. Scrip codes come
// back as JSON numbers or strings, so decode them loosely.
type bseScripResponse struct {
	Table []struct {
		ScripCd any `json:"scrip_cd"`
	} `json:"Table"`
}

// scripCode renders a loosely typed scrip_cd value as its code string.
func scripCode(v any) string {
	switch c := v.(type) {
	case string:
		return strings.TrimSpace(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case json.Number:
		return c.String()
	default:
		return ""
	}
}

// GetSymbols returns listed BSE scrip codes qualified with the .BO suffix.
func (b *BSEList) GetSymbols(ctx context.Context) ([]string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := b.baseURL + "/BseIndiaAPI/api/ListedScripData/w?scripsecid=10&scripcategory=10"
	body, err := doGet(ctx, b.client, url, map[string]string{
		"User-Agent": DefaultUserAgent,
		"Accept":     "application/json",
		"Referer":    "https://www.bseindia.com/",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch BSE scrip list: %w", err)
	}
	defer body.Close()

	var resp bseScripResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode BSE scrip list: %w", err)
	}

	var symbols []string
	for _, row := range resp.Table {
		code := scripCode(row.ScripCd)
		if code == "" {
			continue
		}
		symbols = append(symbols, code+".BO")
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyResponse
	}
	return symbols, nil
}
