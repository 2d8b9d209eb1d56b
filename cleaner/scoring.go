package cleaner

import (
	"errors"
	"fmt"
	"math"
)

// Weights are the composite score weights. They must be non-negative and sum to 1.
type Weights struct {
	FinancialHealth float64 `mapstructure:"financial_health" json:"financial_health"`
	MarketSentiment float64 `mapstructure:"market_sentiment" json:"market_sentiment"`
	PeerPerformance float64 `mapstructure:"peer_performance" json:"peer_performance"`
	MarketPosition  float64 `mapstructure:"market_position" json:"market_position"`
}

// DefaultWeights returns 0.30 / 0.25 / 0.25 / 0.20.
func DefaultWeights() Weights {
	return Weights{
		FinancialHealth: 0.30,
		MarketSentiment: 0.25,
		PeerPerformance: 0.25,
		MarketPosition:  0.20,
	}
}

const weightTolerance = 1e-9

var ErrInvalidWeights = errors.New("invalid scoring weights")

// Validate checks sign and sum.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"financial_health": w.FinancialHealth,
		"market_sentiment": w.MarketSentiment,
		"peer_performance": w.PeerPerformance,
		"market_position":  w.MarketPosition,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidWeights, name, v)
		}
	}
	sum := w.FinancialHealth + w.MarketSentiment + w.PeerPerformance + w.MarketPosition
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}

// Scorer computes component and composite investment scores.
type Scorer struct {
	weights Weights
}

// NewScorer validates w and returns a Scorer.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

func (s *Scorer) Weights() Weights { return s.weights }

// Score produces the composite result from the clean records. Grades and the
// recommendation use the unrounded composite.
func (s *Scorer) Score(basic BasicInfo, fin FinancialMetrics, news NewsSentiment, peers PeerPosition) InvestmentScores {
	financial := FinancialHealthScore(basic, fin)
	sentiment := SentimentScore(news)
	competitive := peers.OverallCompetitiveScore
	momentum := fin.MomentumScore

	overall := financial*s.weights.FinancialHealth +
		sentiment*s.weights.MarketSentiment +
		competitive*s.weights.PeerPerformance +
		momentum*s.weights.MarketPosition

	return InvestmentScores{
		OverallScore:             Round(overall, 1),
		FinancialHealthScore:     Round(financial, 1),
		MarketSentimentScore:     Round(sentiment, 1),
		CompetitivePositionScore: Round(competitive, 1),
		MomentumScore:            Round(momentum, 1),
		OverallGrade:             Grade(overall),
		FinancialGrade:           Grade(financial),
		SentimentGrade:           Grade(sentiment),
		CompetitiveGrade:         Grade(competitive),
		Recommendation:           Recommend(overall),
		ConfidenceLevel:          ConfidenceFor(basic, fin, news, peers),
	}
}

// FinancialHealthScore starts at 50 and adjusts for valuation, volatility and size.
func FinancialHealthScore(basic BasicInfo, fin FinancialMetrics) float64 {
	score := 50.0

	pe := basic.PERatio
	if pe > 10 && pe < 25 {
		score += 15
	} else if pe > 40 {
		score -= 15
	}

	// Missing volatility counts as calm.
	vol := fin.VolatilityPercent
	if vol < 20 {
		score += 10
	} else if vol > 40 {
		score -= 15
	}

	if basic.MarketCapCategory == LargeCap || basic.MarketCapCategory == MegaCap {
		score += 10
	}

	return clamp(score, 0, 100)
}

// SentimentScore is the media attention adjusted by coverage breadth.
func SentimentScore(news NewsSentiment) float64 {
	if news.TotalArticles == 0 {
		return 50
	}
	score := news.MediaAttentionScore
	switch news.NewsCoverage {
	case CoverageHigh:
		score += 10
	case CoverageLow:
		score -= 5
	}
	return clamp(score, 0, 100)
}

// Grade maps a score to a letter grade in 5-point bands.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 80:
		return "A-"
	case score >= 75:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 65:
		return "B-"
	case score >= 60:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 50:
		return "C-"
	default:
		return "D"
	}
}

// Recommend maps a composite score to an action.
func Recommend(score float64) Recommendation {
	switch {
	case score >= 80:
		return StrongBuy
	case score >= 70:
		return Buy
	case score >= 60:
		return Hold
	case score >= 50:
		return WeakHold
	default:
		return Sell
	}
}

// ConfidenceFor rates how many sources were populated.
func ConfidenceFor(basic BasicInfo, fin FinancialMetrics, news NewsSentiment, peers PeerPosition) Confidence {
	q := AssessQuality(basic, fin, news, peers)
	ratio := float64(q.Count()) / 4
	switch {
	case ratio >= 0.75:
		return ConfidenceHigh
	case ratio >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
