package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"investment-research/cleaner"
	"investment-research/logging"
)

const (
	sectionConcurrency = 3
	headlineCount      = 3
	targetTimeline     = "6-12 months"
)

// Agent writes the narrative sections for a cleaned dataset.
type Agent struct {
	provider Provider
	logger   arbor.ILogger
	now      func() time.Time
}

func NewAgent(provider Provider, logger arbor.ILogger) *Agent {
	if provider == nil {
		provider = Offline{}
	}
	if logger == nil {
		logger = logging.Get()
	}
	return &Agent{provider: provider, logger: logger, now: time.Now}
}

func (a *Agent) Provider() Provider { return a.provider }

// Analyze generates every section. Generation failures are recorded in the
// affected section's text and never fail the analysis.
func (a *Agent) Analyze(ctx context.Context, d *cleaner.CleanDataset) *Analysis {
	start := a.now()
	o, fin, news, scores := d.CompanyOverview, d.FinancialMetrics, d.MarketSentiment, d.InvestmentScores

	headlines := make([]string, 0, headlineCount)
	for _, art := range news.Articles {
		if len(headlines) == headlineCount {
			break
		}
		if art.Title != "" {
			headlines = append(headlines, art.Title)
		}
	}

	target := PriceTarget(o.CurrentPrice, scores.OverallScore, fin.MomentumScore)
	upside := 0.0
	if o.CurrentPrice > 0 {
		upside = (target - o.CurrentPrice) / o.CurrentPrice * 100
	}

	an := &Analysis{
		Ticker:            d.Ticker,
		CompanyName:       d.CompanyName,
		AnalysisTimestamp: start.Format(time.RFC3339),
		BackendUsed:       a.provider.Name(),
		ModelUsed:         a.provider.Model(),
		ExecutiveSummary: ExecutiveSummary{
			OverallScore:   scores.OverallScore,
			Recommendation: scores.Recommendation,
			KeyMetrics:     SummaryMetrics{CurrentPrice: o.CurrentPrice, Sector: o.Sector, OverallScore: scores.OverallScore},
		},
		FinancialAnalysis: FinancialAnalysis{
			ValuationAssessment: ValuationAssessment(o.PERatio),
			RiskLevel:           RiskLevel(fin.VolatilityPercent),
			MomentumTrend:       MomentumTrend(fin.MomentumScore),
			KeyMetrics: FinancialMetrics{
				PERatio:           o.PERatio,
				Volatility:        fin.VolatilityPercent,
				MomentumScore:     fin.MomentumScore,
				MarketCapBillions: o.MarketCapBillions,
			},
		},
		SentimentAnalysis: SentimentAnalysis{
			MediaAttentionScore: news.MediaAttentionScore,
			CoverageQuality:     CoverageQuality(news.TotalArticles),
			RecentHeadlines:     headlines,
			SentimentTrend:      SentimentTrend(news.MediaAttentionScore),
		},
		CompetitiveAnalysis: CompetitiveAnalysis{
			CompetitiveStrength: CompetitiveStrength(o.MarketCapBillions),
			MarketPosition:      MarketPosition(o.MarketCapBillions),
		},
		InvestmentThesis: InvestmentThesis{InvestmentAppeal: InvestmentAppeal(scores.OverallScore)},
		RiskAssessment: RiskAssessment{
			OverallRiskLevel: RiskLevel(fin.VolatilityPercent),
			VolatilityRisk:   fin.VolatilityPercent,
		},
		Recommendation: RecommendationSection{
			Action:          scores.Recommendation,
			CurrentPrice:    o.CurrentPrice,
			PriceTarget:     cleaner.Round(target, 2),
			UpsidePotential: cleaner.Round(upside, 1),
			ConfidenceLevel: scores.ConfidenceLevel,
			Timeline:        targetTimeline,
			OverallScore:    scores.OverallScore,
		},
		OverallScore: scores.OverallScore,
	}

	jobs := []struct {
		name   string
		prompt string
		out    *string
	}{
		{"executive_summary", executiveSummaryPrompt(d), &an.ExecutiveSummary.SummaryText},
		{"financial_analysis", financialPrompt(d), &an.FinancialAnalysis.AnalysisText},
		{"sentiment_analysis", sentimentPrompt(d, headlines), &an.SentimentAnalysis.AnalysisText},
		{"competitive_analysis", competitivePrompt(d), &an.CompetitiveAnalysis.AnalysisText},
		{"investment_thesis", thesisPrompt(d), &an.InvestmentThesis.ThesisText},
		{"risk_assessment", riskPrompt(d), &an.RiskAssessment.RiskText},
		{"recommendation", recommendationPrompt(d, target, upside), &an.Recommendation.RecommendationText},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	for _, job := range jobs {
		g.Go(func() error {
			text, err := a.provider.Generate(gctx, systemPrompt, job.prompt)
			if err != nil {
				a.logger.Warn().Str("ticker", d.Ticker).Str("section", job.name).Err(err).Msg("Section generation failed")
				text = unavailablePrefix + err.Error()
			}
			*job.out = text
			return nil
		})
	}
	_ = g.Wait()

	a.logger.Info().
		Str("ticker", an.Ticker).
		Str("model", an.ModelUsed).
		Str("score", strconv.FormatFloat(an.OverallScore, 'f', 1, 64)).
		Str("action", string(an.Recommendation.Action)).
		Str("price_target", fmt.Sprintf("%.2f", an.Recommendation.PriceTarget)).
		Dur("elapsed", a.now().Sub(start)).
		Msg("Analysis complete")
	return an
}

// PriceTarget scales the current price by a score-driven multiplier with a
// momentum adjustment.
func PriceTarget(price, score, momentum float64) float64 {
	var m float64
	switch {
	case score > 80:
		m = 1.20
	case score > 70:
		m = 1.15
	case score > 60:
		m = 1.10
	case score > 50:
		m = 1.05
	case score > 40:
		m = 1.00
	default:
		m = 0.95
	}
	switch {
	case momentum > 70:
		m += 0.05
	case momentum < 40:
		m -= 0.05
	}
	return cleaner.Round(price*m, 2)
}

func ValuationAssessment(pe float64) string {
	switch {
	case pe > 15 && pe < 25:
		return "fair"
	case pe > 25:
		return "expensive"
	default:
		return "attractive"
	}
}

func RiskLevel(volatility float64) string {
	switch {
	case volatility > 30:
		return "high"
	case volatility > 20:
		return "medium"
	default:
		return "low"
	}
}

func MomentumTrend(momentum float64) string {
	switch {
	case momentum > 70:
		return "strong"
	case momentum < 40:
		return "weak"
	default:
		return "neutral"
	}
}

func CoverageQuality(articles int) string {
	switch {
	case articles > 10:
		return "high"
	case articles > 5:
		return "medium"
	default:
		return "low"
	}
}

func SentimentTrend(attention float64) string {
	switch {
	case attention > 60:
		return "positive"
	case attention > 40:
		return "neutral"
	default:
		return "negative"
	}
}

func CompetitiveStrength(capBillions float64) string {
	switch {
	case capBillions > 100:
		return "strong"
	case capBillions > 10:
		return "moderate"
	default:
		return "weak"
	}
}

func MarketPosition(capBillions float64) string {
	if capBillions > 50 {
		return "leader"
	}
	return "follower"
}

func InvestmentAppeal(score float64) string {
	switch {
	case score > 70:
		return "high"
	case score > 50:
		return "medium"
	default:
		return "low"
	}
}
