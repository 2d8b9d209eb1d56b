package llm

import (
	"strings"

	"investment-research/cleaner"
)

// Analysis is the sectioned narrative for one company.
type Analysis struct {
	Ticker              string                `json:"ticker"`
	CompanyName         string                `json:"company_name"`
	AnalysisTimestamp   string                `json:"analysis_timestamp"`
	BackendUsed         string                `json:"backend_used"`
	ModelUsed           string                `json:"model_used"`
	ExecutiveSummary    ExecutiveSummary      `json:"executive_summary"`
	FinancialAnalysis   FinancialAnalysis     `json:"financial_analysis"`
	SentimentAnalysis   SentimentAnalysis     `json:"sentiment_analysis"`
	CompetitiveAnalysis CompetitiveAnalysis   `json:"competitive_analysis"`
	InvestmentThesis    InvestmentThesis      `json:"investment_thesis"`
	RiskAssessment      RiskAssessment        `json:"risk_assessment"`
	Recommendation      RecommendationSection `json:"recommendation"`
	OverallScore        float64               `json:"overall_score"`
}

type SummaryMetrics struct {
	CurrentPrice float64 `json:"current_price"`
	Sector       string  `json:"sector"`
	OverallScore float64 `json:"overall_score"`
}

type ExecutiveSummary struct {
	SummaryText    string                 `json:"summary_text"`
	OverallScore   float64                `json:"overall_score"`
	Recommendation cleaner.Recommendation `json:"recommendation"`
	KeyMetrics     SummaryMetrics         `json:"key_metrics"`
}

type FinancialMetrics struct {
	PERatio           float64 `json:"pe_ratio"`
	Volatility        float64 `json:"volatility"`
	MomentumScore     float64 `json:"momentum_score"`
	MarketCapBillions float64 `json:"market_cap_billions"`
}

type FinancialAnalysis struct {
	AnalysisText        string           `json:"analysis_text"`
	ValuationAssessment string           `json:"valuation_assessment"`
	RiskLevel           string           `json:"risk_level"`
	MomentumTrend       string           `json:"momentum_trend"`
	KeyMetrics          FinancialMetrics `json:"key_metrics"`
}

type SentimentAnalysis struct {
	AnalysisText        string   `json:"analysis_text"`
	MediaAttentionScore float64  `json:"media_attention_score"`
	CoverageQuality     string   `json:"coverage_quality"`
	RecentHeadlines     []string `json:"recent_headlines"`
	SentimentTrend      string   `json:"sentiment_trend"`
}

type CompetitiveAnalysis struct {
	AnalysisText        string `json:"analysis_text"`
	CompetitiveStrength string `json:"competitive_strength"`
	MarketPosition      string `json:"market_position"`
}

type InvestmentThesis struct {
	ThesisText       string `json:"thesis_text"`
	InvestmentAppeal string `json:"investment_appeal"`
}

type RiskAssessment struct {
	RiskText         string  `json:"risk_text"`
	OverallRiskLevel string  `json:"overall_risk_level"`
	VolatilityRisk   float64 `json:"volatility_risk"`
}

type RecommendationSection struct {
	RecommendationText string                 `json:"recommendation_text"`
	Action             cleaner.Recommendation `json:"action"`
	CurrentPrice       float64                `json:"current_price"`
	PriceTarget        float64                `json:"price_target"`
	UpsidePotential    float64                `json:"upside_potential"`
	ConfidenceLevel    cleaner.Confidence     `json:"confidence_level"`
	Timeline           string                 `json:"timeline"`
	OverallScore       float64                `json:"overall_score"`
}

// unavailablePrefix marks a section whose generation failed.
const unavailablePrefix = "Analysis unavailable: "

func generated(text string) bool {
	return strings.TrimSpace(text) != "" && !strings.HasPrefix(text, unavailablePrefix)
}

// Sections reports which narrative sections were generated successfully.
func (a *Analysis) Sections() map[string]bool {
	return map[string]bool{
		"executive_summary":    generated(a.ExecutiveSummary.SummaryText),
		"financial_analysis":   generated(a.FinancialAnalysis.AnalysisText),
		"sentiment_analysis":   generated(a.SentimentAnalysis.AnalysisText),
		"competitive_analysis": generated(a.CompetitiveAnalysis.AnalysisText),
		"investment_thesis":    generated(a.InvestmentThesis.ThesisText),
		"risk_assessment":      generated(a.RiskAssessment.RiskText),
		"recommendation":       generated(a.Recommendation.RecommendationText),
	}
}
