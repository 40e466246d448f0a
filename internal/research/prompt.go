package research

import (
	"fmt"
	"strings"

	"github.com/niveshlab/nivesh/pkg/models"
)

// noRecentNews is substituted for the headline block when no headlines
// are available.
const noRecentNews = "No recent news"

// analysisPromptTemplate frames the LLM request. The two %s slots take
// the serialized fundamentals and the headline block.
const analysisPromptTemplate = `
    Analyze this stock as a senior financial analyst:
    **Analysis Framework to Follow:**
    Note: Only follow this framework for analysis DO NOT return this in output
    1. Valuation: Is the stock overvalued or undervalued based on multiples (PE, P/B, P/S etc.)?
    2. Financial Health: Assess debt levels, liquidity, and profitability metrics.
    3. Growth Potential: Evaluate revenue and earnings growth trends.
    4. Competitive Position: Consider sector and industry position based on available data.
    5. Market Sentiment: Incorporate analyst ratings and recent news sentiment.
    6. Macro Factors: Consider any relevant macroeconomic factors.
    7. Technicals: Briefly consider price trends and moving averages if available.

    **Fundamentals:**
    %s

    **Recent News:**
    %s

    Note: After analysing based on the above framework and provided fundamentals and latest news, the output should only return the below points:
    1. Health score (1-10) (Note:justify your given healthscore)
    2. Key strengths/risks
    3. Valuation assessment
    5. Macro factors
    4. Recommendation (Buy/Hold/Sell) (Note: justify your Recommendation)

    `

// BuildPrompt serializes the metric dictionary and headlines into the
// analysis prompt. Pure and deterministic: identical inputs yield
// byte-identical output. Metrics appear one "key: value" line each in
// insertion order; empty news yields the literal "No recent news" line.
func BuildPrompt(m *models.Metrics, headlines []string) string {
	lines := make([]string, 0, m.Len())
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		lines = append(lines, fmt.Sprintf("%s: %s", key, v.String()))
	}

	newsBlock := noRecentNews
	if len(headlines) > 0 {
		newsBlock = strings.Join(headlines, "\n")
	}

	return fmt.Sprintf(analysisPromptTemplate, strings.Join(lines, "\n"), newsBlock)
}
