package llm

import (
	"fmt"
	"strings"

	"investment-research/cleaner"
)

func executiveSummaryPrompt(d *cleaner.CleanDataset) string {
	o, s := d.CompanyOverview, d.InvestmentScores
	return fmt.Sprintf(`Write a professional executive summary for %s:

Company Details:
- Sector: %s
- Current Price: $%.2f
- Overall Investment Score: %.1f/100
- Recommendation: %s

Write 2-3 paragraphs covering:
1. Company overview and market position
2. Key investment highlights and value proposition
3. Overall recommendation rationale

Keep it professional, concise, and investor-focused.`,
		o.CompanyName, o.Sector, o.CurrentPrice, s.OverallScore, s.Recommendation)
}

func financialPrompt(d *cleaner.CleanDataset) string {
	o, f := d.CompanyOverview, d.FinancialMetrics
	return fmt.Sprintf(`Analyze the financial performance and valuation:

Financial Metrics:
- Current Price: $%.2f
- P/E Ratio: %.1f
- Market Cap: $%.1fB
- Volatility: %.1f%%
- Momentum Score: %.1f/100

Provide analysis covering:
1. Valuation assessment (attractive/fair/expensive with rationale)
2. Financial strength and performance trends
3. Risk factors and volatility analysis
4. Momentum and technical indicators

Write 3-4 professional paragraphs with specific financial insights.`,
		o.CurrentPrice, o.PERatio, o.MarketCapBillions, f.VolatilityPercent, f.MomentumScore)
}

func sentimentPrompt(d *cleaner.CleanDataset, headlines []string) string {
	n := d.MarketSentiment
	lines := make([]string, 0, len(headlines))
	for _, h := range headlines {
		lines = append(lines, "- "+h)
	}
	return fmt.Sprintf(`Analyze market sentiment for %s:

Media Coverage:
- Total Recent Articles: %d
- Media Attention Score: %.1f/100
- Top Sources: %s

Recent Headlines:
%s

Provide analysis covering:
1. Overall media sentiment and coverage quality
2. Key themes and market perception
3. Impact on investor sentiment and stock performance
4. Social media and retail investor sentiment

Write 2-3 professional paragraphs.`,
		d.CompanyName, n.TotalArticles, n.MediaAttentionScore,
		strings.Join(firstN(n.TopSources, 3), ", "), strings.Join(lines, "\n"))
}

func competitivePrompt(d *cleaner.CleanDataset) string {
	o := d.CompanyOverview
	peers := make([]string, 0, len(d.CompetitivePosition.Peers))
	for _, p := range d.CompetitivePosition.Peers {
		peers = append(peers, p.Ticker)
	}
	peerLine := "none identified"
	if len(peers) > 0 {
		peerLine = strings.Join(peers, ", ")
	}
	return fmt.Sprintf(`Analyze the competitive position of %s in the %s sector:

Company Profile:
- Market Cap: $%.1fB
- Sector: %s
- Peers: %s

Provide analysis covering:
1. Competitive positioning and market share
2. Key competitive advantages and moats
3. Main competitors and threats
4. Industry trends and outlook

Write 2-3 professional paragraphs.`,
		o.CompanyName, o.Sector, o.MarketCapBillions, o.Sector, peerLine)
}

func thesisPrompt(d *cleaner.CleanDataset) string {
	t := d.LLMContext.InvestmentThesis
	return fmt.Sprintf(`Develop a clear investment thesis for %s:

Investment Context:
- Overall Investment Score: %.1f/100
- Key Strengths: %s
- Key Risks: %s

Create a compelling investment thesis covering:
1. Core investment opportunity and value drivers
2. Key catalysts for growth and performance
3. Why this investment makes sense now
4. Long-term value creation potential

Write a strong, persuasive investment case in 3-4 paragraphs.`,
		d.CompanyOverview.CompanyName, d.InvestmentScores.OverallScore,
		listOrNone(t.KeyStrengths), listOrNone(t.KeyRisks))
}

func riskPrompt(d *cleaner.CleanDataset) string {
	o := d.CompanyOverview
	return fmt.Sprintf(`Assess investment risks for %s:

Risk Context:
- Sector: %s
- Volatility: %.1f%%

Analyze key risks including:
1. Company-specific operational risks
2. Sector and industry risks
3. Market and economic risks
4. Risk mitigation factors

Provide balanced risk assessment in 2-3 paragraphs.`,
		o.CompanyName, o.Sector, d.FinancialMetrics.VolatilityPercent)
}

func recommendationPrompt(d *cleaner.CleanDataset, target, upside float64) string {
	s := d.InvestmentScores
	return fmt.Sprintf(`Provide final investment recommendation:

Analysis Summary:
- Overall Investment Score: %.1f/100
- Current Recommendation: %s
- Current Price: $%.2f
- Price Target: $%.2f
- Upside Potential: %.1f%%
- Confidence Level: %s

Provide recommendation covering:
1. Clear investment action (Buy/Hold/Sell) with rationale
2. Price target methodology and rationale
3. Key catalysts and expected timeline
4. Risk considerations and position sizing
5. Exit strategy considerations

Write a comprehensive but concise recommendation.`,
		s.OverallScore, s.Recommendation, d.CompanyOverview.CurrentPrice, target, upside, s.ConfidenceLevel)
}

func listOrNone(xs []string) string {
	if len(xs) == 0 {
		return "none identified"
	}
	return strings.Join(xs, "; ")
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
