package research

import (
	"context"
	"errors"
	"fmt"

	"github.com/niveshlab/nivesh/pkg/models"
	"github.com/niveshlab/nivesh/pkg/utils"
)

// ErrFundamentalsUnavailable aborts a request before any downstream
// call: without fundamentals there is nothing to analyze. Surfaced to
// the caller as a retryable condition.
var ErrFundamentalsUnavailable = errors.New("fundamentals unavailable")

// newsLimit caps the headlines included in a response and prompt.
const newsLimit = 3

// FundamentalsFetcher supplies the canonical metrics for a symbol.
// An empty dictionary signals total provider failure.
type FundamentalsFetcher interface {
	Fetch(ctx context.Context, symbol string) *models.Metrics
}

// NewsFetcher supplies recent headlines for a base symbol.
type NewsFetcher interface {
	GetStockNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error)
}

// ChartRenderer supplies the encoded price chart for a symbol.
type ChartRenderer interface {
	Render(ctx context.Context, symbol string) (string, error)
}

// Analyzer supplies the narrative completion for a prompt.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Result is the aggregate of one analysis request. Chart and Analysis
// may be degraded defaults; Partial records that at least one of them
// was.
type Result struct {
	Symbol       string
	Metrics      *models.Metrics
	Fundamentals []DisplayMetric
	Headlines    []string
	Chart        string
	Analysis     string
	Partial      bool
}

// Orchestrator sequences the analysis pipeline for one symbol.
type Orchestrator struct {
	fundamentals FundamentalsFetcher
	news         NewsFetcher
	chart        ChartRenderer
	analyzer     Analyzer
}

// NewOrchestrator wires the pipeline collaborators.
func NewOrchestrator(fundamentals FundamentalsFetcher, news NewsFetcher, chart ChartRenderer, analyzer Analyzer) *Orchestrator {
	return &Orchestrator{
		fundamentals: fundamentals,
		news:         news,
		chart:        chart,
		analyzer:     analyzer,
	}
}

// Analyze runs the pipeline for an exchange-qualified symbol. Empty
// fundamentals abort immediately with ErrFundamentalsUnavailable and no
// downstream calls. Once fundamentals are present, news, chart, and
// narrative each degrade independently to a safe default instead of
// failing the request.
func (o *Orchestrator) Analyze(ctx context.Context, symbol string) (*Result, error) {
	symbol = utils.NormalizeSymbol(symbol)

	metrics := o.fundamentals.Fetch(ctx, symbol)
	if metrics.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrFundamentalsUnavailable, symbol)
	}

	result := &Result{
		Symbol:       symbol,
		Metrics:      metrics,
		Fundamentals: BuildDisplay(metrics),
	}

	headlines, err := o.fetchHeadlines(ctx, symbol)
	if err != nil {
		result.Partial = true
	}
	result.Headlines = headlines

	chart, err := o.chart.Render(ctx, symbol)
	if err != nil {
		result.Partial = true
		chart = ""
	}
	result.Chart = chart

	prompt := BuildPrompt(metrics, headlines)
	analysis, err := o.analyzer.Analyze(ctx, prompt)
	if err != nil {
		result.Partial = true
		analysis = fmt.Sprintf("Analysis error: %v", err)
	}
	result.Analysis = analysis

	return result, nil
}

// fetchHeadlines fetches and formats up to newsLimit headlines. A
// provider failure yields an empty list.
func (o *Orchestrator) fetchHeadlines(ctx context.Context, symbol string) ([]string, error) {
	articles, err := o.news.GetStockNews(ctx, utils.BaseSymbol(symbol), newsLimit)
	if err != nil {
		return nil, err
	}
	if len(articles) > newsLimit {
		articles = articles[:newsLimit]
	}
	headlines := make([]string, 0, len(articles))
	for _, a := range articles {
		headlines = append(headlines, a.Headline())
	}
	return headlines, nil
}
