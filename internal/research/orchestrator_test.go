package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/niveshlab/nivesh/pkg/models"
)

type fakeFundamentals struct {
	metrics *models.Metrics
	calls   int
}

func (f *fakeFundamentals) Fetch(ctx context.Context, symbol string) *models.Metrics {
	f.calls++
	return f.metrics
}

type fakeNews struct {
	articles []models.NewsArticle
	err      error
	calls    int
	symbol   string
}

func (f *fakeNews) GetStockNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	f.calls++
	f.symbol = symbol
	return f.articles, f.err
}

type fakeChart struct {
	payload string
	err     error
	calls   int
}

func (f *fakeChart) Render(ctx context.Context, symbol string) (string, error) {
	f.calls++
	return f.payload, f.err
}

type fakeAnalyzer struct {
	completion string
	err        error
	calls      int
	prompt     string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.completion, f.err
}

func healthyMetrics() *models.Metrics {
	m := models.NewMetrics()
	m.SetText("Name", "Tata Consultancy Services")
	m.SetNumber("Current Price", 4100.25)
	return m
}

func newsArticle(title string) models.NewsArticle {
	return models.NewsArticle{
		Title:       title,
		PublishedAt: time.Date(2025, 8, 12, 9, 30, 0, 0, time.UTC),
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	fund := &fakeFundamentals{metrics: healthyMetrics()}
	news := &fakeNews{articles: []models.NewsArticle{newsArticle("TCS wins deal")}}
	chart := &fakeChart{payload: "c2ZnLWJhc2U2NA=="}
	analyzer := &fakeAnalyzer{completion: "Health score: 8/10"}
	o := NewOrchestrator(fund, news, chart, analyzer)

	result, err := o.Analyze(context.Background(), "tcs.ns")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if result.Symbol != "TCS.NS" {
		t.Errorf("symbol = %q, want normalized TCS.NS", result.Symbol)
	}
	if result.Partial {
		t.Error("expected Partial=false on clean run")
	}
	if result.Chart != "c2ZnLWJhc2U2NA==" {
		t.Errorf("chart = %q", result.Chart)
	}
	if result.Analysis != "Health score: 8/10" {
		t.Errorf("analysis = %q", result.Analysis)
	}
	if len(result.Headlines) != 1 || result.Headlines[0] != "TCS wins deal (2025-08-12)" {
		t.Errorf("headlines = %v", result.Headlines)
	}
	// News is fetched for the base symbol, without the exchange suffix.
	if news.symbol != "TCS" {
		t.Errorf("news symbol = %q, want TCS", news.symbol)
	}
	if len(result.Fundamentals) == 0 {
		t.Error("expected display rows")
	}
	if !strings.Contains(analyzer.prompt, "Name: Tata Consultancy Services") {
		t.Error("prompt missing metric line")
	}
}

func TestAnalyzeEmptyFundamentalsShortCircuits(t *testing.T) {
	fund := &fakeFundamentals{metrics: models.NewMetrics()}
	news := &fakeNews{}
	chart := &fakeChart{}
	analyzer := &fakeAnalyzer{}
	o := NewOrchestrator(fund, news, chart, analyzer)

	_, err := o.Analyze(context.Background(), "TCS.NS")
	if !errors.Is(err, ErrFundamentalsUnavailable) {
		t.Fatalf("got %v, want ErrFundamentalsUnavailable", err)
	}
	// No downstream work happens.
	if news.calls != 0 || chart.calls != 0 || analyzer.calls != 0 {
		t.Fatalf("downstream calls = %d, %d, %d; want all 0", news.calls, chart.calls, analyzer.calls)
	}
}

func TestAnalyzeDegradesIndependently(t *testing.T) {
	fund := &fakeFundamentals{metrics: healthyMetrics()}
	news := &fakeNews{err: fmt.Errorf("news provider down")}
	chart := &fakeChart{err: fmt.Errorf("chart source down")}
	analyzer := &fakeAnalyzer{completion: "still analyzed"}
	o := NewOrchestrator(fund, news, chart, analyzer)

	result, err := o.Analyze(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if !result.Partial {
		t.Error("expected Partial=true when news and chart degraded")
	}
	if result.Chart != "" {
		t.Errorf("chart = %q, want empty", result.Chart)
	}
	// The narrative still runs, with the no-news placeholder.
	if analyzer.calls != 1 {
		t.Fatalf("analyzer calls = %d, want 1", analyzer.calls)
	}
	if !strings.Contains(analyzer.prompt, "No recent news") {
		t.Error("prompt missing no-news placeholder")
	}
	if result.Analysis != "still analyzed" {
		t.Errorf("analysis = %q", result.Analysis)
	}
}

func TestAnalyzeLLMFailureYieldsErrorNarrative(t *testing.T) {
	fund := &fakeFundamentals{metrics: healthyMetrics()}
	o := NewOrchestrator(fund, &fakeNews{}, &fakeChart{payload: "abc"}, &fakeAnalyzer{err: fmt.Errorf("quota exceeded")})

	result, err := o.Analyze(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if !result.Partial {
		t.Error("expected Partial=true on narrative failure")
	}
	if result.Analysis != "Analysis error: quota exceeded" {
		t.Errorf("analysis = %q", result.Analysis)
	}
	// Chart survives the narrative failure.
	if result.Chart != "abc" {
		t.Errorf("chart = %q", result.Chart)
	}
}

func TestAnalyzeCapsHeadlines(t *testing.T) {
	articles := []models.NewsArticle{
		newsArticle("one"), newsArticle("two"), newsArticle("three"), newsArticle("four"),
	}
	fund := &fakeFundamentals{metrics: healthyMetrics()}
	o := NewOrchestrator(fund, &fakeNews{articles: articles}, &fakeChart{}, &fakeAnalyzer{completion: "ok"})

	result, err := o.Analyze(context.Background(), "TCS.NS")
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if len(result.Headlines) != 3 {
		t.Fatalf("headlines = %d, want 3", len(result.Headlines))
	}
	// Provider order is kept, surplus is dropped from the tail.
	if result.Headlines[0] != "one (2025-08-12)" {
		t.Errorf("headlines[0] = %q", result.Headlines[0])
	}
}
