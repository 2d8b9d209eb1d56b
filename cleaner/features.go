package cleaner

import (
	"fmt"
	"math"
	"strings"
)

// DeriveFeatures synthesizes investment signals from the four clean records.
func DeriveFeatures(basic BasicInfo, fin FinancialMetrics, news NewsSentiment, peers PeerPosition) AnalysisFeatures {
	f := AnalysisFeatures{
		CompanySize:             basic.MarketCapCategory,
		ValuationAttractiveness: valuationAttractiveness(basic.PERatio, peers.ValuationVsPeers),
		FinancialStability:      fin.StabilityScore,
		GrowthMomentum:          fin.MomentumScore,
		MediaCoverageQuality:    news.MediaAttentionScore,
		NewsSentimentTrend:      "neutral",
		MarketPositionStrength:  peers.OverallCompetitiveScore,
		SectorLeadership:        60,
		VolatilityRisk:          volatilityRisk(fin.VolatilityPercent),
		CompetitiveRisk:         float64(15 * len(peers.CompetitiveWeaknesses)),
		KeyStrengths:            []string{},
		KeyRisks:                []string{},
		InvestmentHighlights:    []string{},
	}

	if basic.MarketCapCategory == LargeCap || basic.MarketCapCategory == MegaCap {
		f.KeyStrengths = append(f.KeyStrengths, "Large, established company")
	}
	if fin.VolatilityCategory == VolatilityLow {
		f.KeyStrengths = append(f.KeyStrengths, "Low volatility profile")
	}
	if news.MediaAttentionScore > 60 {
		f.KeyStrengths = append(f.KeyStrengths, "Strong media coverage")
	}

	if fin.VolatilityCategory == VolatilityHigh {
		f.KeyRisks = append(f.KeyRisks, "High price volatility")
	}
	if basic.PECategory == PEHighlyOvervalued {
		f.KeyRisks = append(f.KeyRisks, "Very high valuation metrics")
	}
	if news.TotalArticles < 3 {
		f.KeyRisks = append(f.KeyRisks, "Limited recent news coverage")
	}

	f.InvestmentHighlights = append(f.InvestmentHighlights,
		fmt.Sprintf("%s operates in %s sector", basic.CompanyName, basic.Sector))
	if basic.CurrentPrice != 0 {
		f.InvestmentHighlights = append(f.InvestmentHighlights,
			fmt.Sprintf("Current price: $%.2f", basic.CurrentPrice))
	}
	if basic.MarketCapCategory != "" && basic.MarketCapCategory != MarketCapUnknown {
		f.InvestmentHighlights = append(f.InvestmentHighlights,
			titleCase(strings.ReplaceAll(string(basic.MarketCapCategory), "_", " "))+" company")
	}

	f.KeyStrengths = firstN(f.KeyStrengths, 3)
	f.KeyRisks = firstN(f.KeyRisks, 3)
	f.InvestmentHighlights = firstN(f.InvestmentHighlights, 3)
	return f
}

// valuationAttractiveness scores the absolute P/E. The peer valuation score is
// accepted but does not contribute.
func valuationAttractiveness(pe float64, _ float64) float64 {
	switch {
	case pe == 0:
		return 50
	case pe < 15:
		return 85
	case pe < 25:
		return 70
	default:
		return 40
	}
}

func volatilityRisk(vol float64) float64 {
	if vol == 0 {
		return 50
	}
	return math.Min(100, vol*2)
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
