package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NSEList fetches the Nifty 50 constituent list from the NSE archives.
type NSEList struct {
	baseURL string
	client  *http.Client
	limiter *RateLimiter
}

// NewNSEList creates an NSE symbol-list source.
func NewNSEList() *NSEList {
	return &NSEList{
		baseURL: "https://archives.nseindia.com",
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: NewRateLimiter(1, time.Second),
	}
}

// Name returns the data source name.
func (n *NSEList) Name() string { return "NSE Archives" }

// GetSymbols returns the Nifty 50 symbols qualified with the .NS suffix.
func (n *NSEList) GetSymbols(ctx context.Context) ([]string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := n.baseURL + "/content/indices/ind_nifty50list.csv"
	body, err := doGet(ctx, n.client, url, map[string]string{
		"User-Agent": DefaultUserAgent,
		"Accept":     "text/csv,*/*",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch nifty 50 list: %w", err)
	}
	defer body.Close()

	symbols, err := parseNiftyCSV(body)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyResponse
	}
	return symbols, nil
}

// parseNiftyCSV extracts the Symbol column from the index constituent CSV.
// Columns: Company Name,Industry,Symbol,Series,ISIN Code.
func parseNiftyCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read nifty CSV header: %w", err)
	}
	symbolCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "Symbol") {
			symbolCol = i
			break
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("nifty CSV: no Symbol column")
	}

	var symbols []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read nifty CSV row: %w", err)
		}
		if symbolCol >= len(record) {
			continue
		}
		sym := strings.TrimSpace(record[symbolCol])
		if sym == "" {
			continue
		}
		symbols = append(symbols, sym+".NS")
	}
	return symbols, nil
}
