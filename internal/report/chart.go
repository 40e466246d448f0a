// Package report renders the price-history chart attached to analysis
// responses. Charts are pure-Go SVG, so rendering is headless and keeps
// no shared drawing state between calls.
package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/niveshlab/nivesh/pkg/models"
)

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	LineColor    string // price line color (default: "#2196f3")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		LineColor:    "#2196f3",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// PriceLineChart generates an SVG line chart of daily closing prices
// with a title, axis labels, and a grid.
func PriceLineChart(candles []models.OHLCV, cfg ChartConfig) string {
	if len(candles) == 0 {
		return ""
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = "Price History"
	}

	px, py, pw, ph := cfg.plotArea()
	n := len(candles)

	minVal, maxVal := candles[0].Close, candles[0].Close
	for _, c := range candles {
		if c.Close < minVal {
			minVal = c.Close
		}
		if c.Close > maxVal {
			maxVal = c.Close
		}
	}
	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Y-axis grid and price labels
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%.1f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val))
	}

	// Price line
	denom := float64(n - 1)
	if denom == 0 {
		denom = 1
	}
	var pathParts []string
	for i, c := range candles {
		if math.IsNaN(c.Close) {
			continue
		}
		cx := float64(px) + float64(i)*float64(pw)/denom
		ratio := (c.Close - minVal) / vRange
		cy := float64(py+ph) - ratio*float64(ph)
		cmd := "L"
		if len(pathParts) == 0 {
			cmd = "M"
		}
		pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, cx, cy))
	}
	if len(pathParts) > 1 {
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
			strings.Join(pathParts, " "), cfg.LineColor))
	}

	// X-axis date labels
	labelInterval := n / 6
	if labelInterval < 1 {
		labelInterval = 1
	}
	for i := 0; i < n; i += labelInterval {
		cx := float64(px) + float64(i)*float64(pw)/denom
		label := candles[i].Timestamp.Format("Jan 06")
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			cx, py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(label)))
	}

	// Axis captions
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="middle">Date</text>`,
		px+pw/2, cfg.Height-8, cfg.FontSize, cfg.TextColor))
	sb.WriteString(fmt.Sprintf(`<text x="14" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-90,14,%d)">Price</text>`,
		py+ph/2, cfg.FontSize, cfg.TextColor, py+ph/2))

	sb.WriteString("</svg>")
	return sb.String()
}

// HistorySource fetches daily candles for a symbol.
type HistorySource interface {
	GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error)
}

// Renderer produces the base64-encoded one-year price chart for a
// symbol.
type Renderer struct {
	history HistorySource
	cfg     ChartConfig
	now     func() time.Time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithChartConfig overrides the chart dimensions and colors.
func WithChartConfig(cfg ChartConfig) RendererOption {
	return func(r *Renderer) { r.cfg = cfg }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) { r.now = now }
}

// NewRenderer creates a chart renderer over a history source.
func NewRenderer(history HistorySource, opts ...RendererOption) *Renderer {
	r := &Renderer{
		history: history,
		cfg:     DefaultChartConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the one-year price chart as base64-encoded SVG. An
// empty string with a nil error means no data points were available;
// callers treat empty as "no chart".
func (r *Renderer) Render(ctx context.Context, symbol string) (string, error) {
	to := r.now()
	candles, err := r.history.GetDailyHistory(ctx, symbol, to.AddDate(-1, 0, 0), to)
	if err != nil {
		return "", fmt.Errorf("chart history %s: %w", symbol, err)
	}
	if len(candles) == 0 {
		return "", nil
	}

	cfg := r.cfg
	cfg.Title = fmt.Sprintf("%s Price History", symbol)
	svg := PriceLineChart(candles, cfg)
	if svg == "" {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString([]byte(svg)), nil
}

// --- SVG helpers ---

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
