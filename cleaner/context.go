package cleaner

import "fmt"

// BuildLLMContext projects the clean records into the compact narrative context.
func BuildLLMContext(basic BasicInfo, fin FinancialMetrics, news NewsSentiment, peers PeerPosition,
	features AnalysisFeatures, scores InvestmentScores) LLMContext {
	return LLMContext{
		ExecutiveSummary: ExecutiveSummary{
			Company:      fmt.Sprintf("%s (%s)", basic.CompanyName, basic.Ticker),
			Sector:       fmt.Sprintf("%s - %s", basic.Sector, basic.Industry),
			MarketCap:    fmt.Sprintf("$%.1fB (%s)", basic.MarketCapBillions, basic.MarketCapCategory),
			CurrentPrice: fmt.Sprintf("$%.2f", basic.CurrentPrice),
			KeyMetrics: KeyMetrics{
				PERatio:       basic.PERatio,
				Volatility:    fmt.Sprintf("%.1f%%", fin.VolatilityPercent),
				PriceMomentum: fin.PriceStrength,
			},
		},
		FinancialHighlights: FinancialHighlights{
			Valuation:   fmt.Sprintf("P/E %.1f (%s)", basic.PERatio, basic.PECategory),
			Performance: fmt.Sprintf("Price at %.0f%% of 30-day range", fin.PricePositionInRange*100),
			RiskProfile: fin.RiskLevel,
			Stability:   fin.VolatilityCategory,
		},
		MarketContext: MarketContext{
			RecentNewsCount: news.TotalArticles,
			MediaAttention:  news.NewsCoverage,
			NewsQuality:     fmt.Sprintf("Avg relevance %.2f", news.AverageRelevance),
			TopSources:      firstN(news.TopSources, 3),
		},
		CompetitivePosition: CompetitiveContext{
			Sector:           peers.Sector,
			PeerCount:        peers.PeerCount,
			CompetitiveScore: fmt.Sprintf("%.0f/100", peers.OverallCompetitiveScore),
			Advantages:       firstN(peers.CompetitiveAdvantages, 3),
			Challenges:       firstN(peers.CompetitiveWeaknesses, 3),
		},
		InvestmentThesis: InvestmentThesis{
			OverallScore: scores.OverallScore,
			KeyStrengths: firstN(features.KeyStrengths, 3),
			KeyRisks:     firstN(features.KeyRisks, 3),
			Highlights:   firstN(features.InvestmentHighlights, 3),
		},
	}
}

// AssessQuality reports which sources carried meaningful data.
func AssessQuality(basic BasicInfo, fin FinancialMetrics, news NewsSentiment, peers PeerPosition) DataQuality {
	return DataQuality{
		BasicInfoQuality:     basic.CompanyName != unknownText,
		FinancialDataQuality: fin.CurrentPrice > 0,
		NewsDataQuality:      news.TotalArticles > 0,
		PeerDataQuality:      peers.PeerCount > 0,
	}
}
