package report

import (
	"fmt"
	"strings"

	"investment-research/llm"
)

const footerText = "Generated by AI Investment Research Platform"

// Markdown lays the analysis out as a Markdown document.
func Markdown(a *llm.Analysis) string {
	var b strings.Builder
	rec := a.Recommendation

	b.WriteString("# Investment Research Report\n\n")
	fmt.Fprintf(&b, "## %s (%s)\n\n", a.CompanyName, a.Ticker)

	writeTable(&b, []string{"Metric", "Value"}, [][]string{
		{"Date", datePart(a.AnalysisTimestamp)},
		{"Overall Score", fmt.Sprintf("%.1f/100", a.OverallScore)},
		{"Recommendation", string(rec.Action)},
		{"Current Price", fmt.Sprintf("$%.2f", rec.CurrentPrice)},
		{"Price Target", fmt.Sprintf("$%.2f", rec.PriceTarget)},
		{"Upside Potential", fmt.Sprintf("%.1f%%", rec.UpsidePotential)},
		{"Confidence", TitleCase(string(rec.ConfidenceLevel))},
		{"Model", a.ModelUsed},
	})

	section(&b, "Executive Summary", a.ExecutiveSummary.SummaryText)

	fin := a.FinancialAnalysis
	section(&b, "Financial Analysis", fin.AnalysisText)
	fmt.Fprintf(&b, "**Valuation:** %s. **Risk Level:** %s. **Momentum:** %s.\n\n",
		TitleCase(fin.ValuationAssessment), TitleCase(fin.RiskLevel), TitleCase(fin.MomentumTrend))
	writeTable(&b, []string{"Metric", "Value"}, [][]string{
		{"P/E Ratio", fmt.Sprintf("%.2f", fin.KeyMetrics.PERatio)},
		{"Volatility", fmt.Sprintf("%.2f%%", fin.KeyMetrics.Volatility)},
		{"Momentum Score", fmt.Sprintf("%.1f/100", fin.KeyMetrics.MomentumScore)},
		{"Market Cap", fmt.Sprintf("$%.1fB", fin.KeyMetrics.MarketCapBillions)},
	})

	sent := a.SentimentAnalysis
	section(&b, "Market Sentiment", sent.AnalysisText)
	fmt.Fprintf(&b, "**Media Attention:** %.1f/100. **Coverage:** %s. **Trend:** %s.\n\n",
		sent.MediaAttentionScore, TitleCase(sent.CoverageQuality), TitleCase(sent.SentimentTrend))
	if len(sent.RecentHeadlines) > 0 {
		b.WriteString("Recent headlines:\n\n")
		for _, h := range sent.RecentHeadlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	comp := a.CompetitiveAnalysis
	section(&b, "Competitive Analysis", comp.AnalysisText)
	fmt.Fprintf(&b, "**Competitive Strength:** %s. **Market Position:** %s.\n\n",
		TitleCase(comp.CompetitiveStrength), TitleCase(comp.MarketPosition))

	section(&b, "Investment Thesis", a.InvestmentThesis.ThesisText)
	fmt.Fprintf(&b, "**Investment Appeal:** %s.\n\n", TitleCase(a.InvestmentThesis.InvestmentAppeal))

	section(&b, "Risk Assessment", a.RiskAssessment.RiskText)
	fmt.Fprintf(&b, "**Overall Risk Level:** %s.\n\n", strings.ToUpper(a.RiskAssessment.OverallRiskLevel))

	section(&b, "Investment Recommendation", rec.RecommendationText)
	fmt.Fprintf(&b, "**Recommendation:** %s. **Price Target:** $%.2f. **Timeline:** %s.\n\n",
		rec.Action, rec.PriceTarget, rec.Timeline)

	b.WriteString("---\n\n")
	b.WriteString("*" + footerText + "*\n")
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	body = strings.TrimSpace(body)
	if body == "" {
		body = "Analysis not available."
	}
	b.WriteString(body)
	b.WriteString("\n\n")
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", "/")
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

// TitleCase turns snake_case or lower-case labels into title case.
func TitleCase(s string) string {
	if s == "" {
		return "Unknown"
	}
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
