// Package research orchestrates a single-symbol analysis request:
// fundamentals, news, chart, and LLM narrative.
package research

import (
	"github.com/niveshlab/nivesh/pkg/models"
	"github.com/niveshlab/nivesh/pkg/utils"
)

// DisplayMetric is one formatted row of the fundamentals section.
type DisplayMetric struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// formatKind selects how a canonical metric is rendered.
type formatKind int

const (
	formatText   formatKind = iota // free text, N/A when absent
	formatScaled                   // Lakh/Crore abbreviation
	formatPlain0                   // grouped integer
	formatPlain2                   // grouped, two decimals
)

// schemaEntry fixes one row of the presentation schema.
type schemaEntry struct {
	label  string
	key    string
	kind   formatKind
	suffix string // appended only when the metric is present
}

// presentationSchema fixes the order and formatting of the fundamentals
// section. It is applied uniformly: metrics absent from the dictionary
// render as "N/A" rather than being omitted.
var presentationSchema = []schemaEntry{
	{label: "Name", key: "Name", kind: formatText},
	{label: "Sector", key: "Sector", kind: formatText},
	{label: "Industry", key: "Industry", kind: formatText},
	{label: "Current Price", key: "Current Price", kind: formatPlain2},
	{label: "52 Week High", key: "52 Week High", kind: formatPlain2},
	{label: "52 Week Low", key: "52 Week Low", kind: formatPlain2},
	{label: "Market Cap", key: "Market Cap", kind: formatScaled},
	{label: "Enterprise Value", key: "Enterprise Value", kind: formatScaled},
	{label: "PE Ratio", key: "PE Ratio", kind: formatPlain2},
	{label: "Forward PE", key: "Forward PE", kind: formatPlain2},
	{label: "Price to Book", key: "Price to Book", kind: formatPlain2},
	{label: "Price to Sales", key: "Price to Sales", kind: formatPlain2},
	{label: "Return on Equity", key: "Return on Equity", kind: formatPlain2},
	{label: "Return on Assets", key: "Return on Assets", kind: formatPlain2},
	{label: "Profit Margins", key: "Profit Margins", kind: formatPlain2},
	{label: "Operating Margins", key: "Operating Margins", kind: formatPlain2},
	{label: "Earnings Growth", key: "Earnings Growth", kind: formatPlain2},
	{label: "Revenue Growth", key: "Revenue Growth", kind: formatPlain2},
	{label: "Debt to Equity", key: "Debt to Equity", kind: formatPlain2},
	{label: "Current Ratio", key: "Current Ratio", kind: formatPlain2},
	{label: "Quick Ratio", key: "Quick Ratio", kind: formatPlain2},
	{label: "Dividend Yield", key: "Dividend Yield", kind: formatPlain2},
	{label: "Payout Ratio", key: "Payout Ratio", kind: formatPlain2},
	{label: "Analyst Recommendation", key: "Analyst Recommendation", kind: formatText},
	{label: "Number of Analysts", key: "Number of Analysts", kind: formatPlain0},
	{label: "Beta", key: "Beta", kind: formatPlain2},
	{label: "50 Day Average", key: "50 Day Average", kind: formatPlain2},
	{label: "200 Day Average", key: "200 Day Average", kind: formatPlain2},
	{label: "1 Month Change", key: "1 Month Change (%)", kind: formatPlain2, suffix: "%"},
	{label: "3 Month Change", key: "3 Month Change (%)", kind: formatPlain2, suffix: "%"},
	{label: "1 Year Change", key: "1 Year Change (%)", kind: formatPlain2, suffix: "%"},
	{label: "Volume", key: "Volume", kind: formatPlain0},
	{label: "Average Volume", key: "Average Volume", kind: formatPlain0},
}

// BuildDisplay renders the canonical metrics through the presentation
// schema into the ordered fundamentals rows.
func BuildDisplay(m *models.Metrics) []DisplayMetric {
	rows := make([]DisplayMetric, 0, len(presentationSchema))
	for _, entry := range presentationSchema {
		v, ok := m.Get(entry.key)

		var formatted string
		switch entry.kind {
		case formatText:
			if ok {
				formatted = v.String()
			} else {
				formatted = utils.NotAvailable
			}
		case formatScaled:
			formatted = utils.FormatScaled(v, ok)
		case formatPlain0:
			formatted = utils.FormatPlain(v, ok, 0)
		case formatPlain2:
			formatted = utils.FormatPlain(v, ok, 2)
		}

		if ok && formatted != utils.NotAvailable && entry.suffix != "" {
			formatted += entry.suffix
		}
		rows = append(rows, DisplayMetric{Key: entry.label, Value: formatted})
	}
	return rows
}
