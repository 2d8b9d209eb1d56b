package cleaner

import (
	"fmt"
	"math"
)

const (
	relativePEKey        = "pe_ratio_vs_sector"
	attractiveRelativePE = 0.9
	premiumRelativePE    = 1.3
	baseCompetitiveScore = 60
	neutralSubScore      = 50
	maxValuationSubScore = 75
)

// CleanPeerData normalizes sector peers and scores the company against them.
func CleanPeerData(raw *RawPeerComparison, ticker string) (PeerPosition, []string) {
	if raw == nil || len(raw.PeerCompanies) == 0 {
		return EmptyPeerPosition(), []string{fmt.Sprintf("No peer data available for %s", ticker)}
	}

	peers := make([]Peer, 0, len(raw.PeerCompanies))
	for _, p := range raw.PeerCompanies {
		peers = append(peers, Peer{
			Ticker:         optionalText(p.Ticker, ""),
			CompanyName:    CleanText(p.CompanyName),
			MarketCap:      SafeFloat(p.MarketCap, 0),
			PERatio:        SafeFloat(p.PERatio, 0),
			PriceToBook:    SafeFloat(p.PriceToBook, 0),
			ProfitMargin:   SafeFloat(p.ProfitMargin, 0),
			DebtToEquity:   SafeFloat(p.DebtToEquity, 0),
			ReturnOnEquity: SafeFloat(p.ReturnOnEquity, 0),
			CurrentPrice:   SafeFloat(p.CurrentPrice, 0),
		})
	}

	metrics := make(map[string]float64, len(raw.CurrentCompanyMetrics))
	for k, v := range raw.CurrentCompanyMetrics {
		metrics[k] = SafeFloat(v, 0)
	}

	relPE := relativePE(raw.RelativePositioning)
	sector := optionalText(raw.Sector, unknownText)

	pos := PeerPosition{
		Sector:                sector,
		Industry:              optionalText(raw.Industry, unknownText),
		PeerCount:             len(peers),
		Peers:                 peers,
		CurrentCompanyMetrics: metrics,
		SectorPositioning:     SectorPositioning{OverallPosition: "average", Strengths: []string{}, Weaknesses: []string{}},
		CompetitiveScores:     competitiveScores(relPE),
		CompetitiveAdvantages: []string{},
		CompetitiveWeaknesses: []string{},
	}

	if relPE != nil {
		if *relPE < attractiveRelativePE {
			pos.CompetitiveAdvantages = append(pos.CompetitiveAdvantages, "Attractive valuation vs peers")
		}
		if *relPE > premiumRelativePE {
			pos.CompetitiveWeaknesses = append(pos.CompetitiveWeaknesses, "Premium valuation vs peers")
		}
	}

	return pos, []string{fmt.Sprintf("INFO: Peer data cleaned: %d peers in %s", len(peers), sector)}
}

// relativePE reads the company-to-sector P/E ratio; nil when absent or unparseable.
// Zero and negative ratios are kept.
func relativePE(positioning map[string]any) *float64 {
	v, ok := toFloat(positioning[relativePEKey])
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func competitiveScores(relPE *float64) CompetitiveScores {
	scores := CompetitiveScores{
		OverallCompetitiveScore:  baseCompetitiveScore,
		ValuationVsPeers:         neutralSubScore,
		ProfitabilityVsPeers:     neutralSubScore,
		FinancialStrengthVsPeers: neutralSubScore,
	}
	if relPE != nil && *relPE != 0 && *relPE < 1.0 {
		scores.ValuationVsPeers = math.Min(maxValuationSubScore, neutralSubScore+(1.0-*relPE)*50)
	}
	return scores
}
