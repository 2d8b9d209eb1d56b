package cleaner

// RawDataset is the collector output for one ticker.
type RawDataset struct {
	Ticker              string      `json:"ticker"`
	CollectionTimestamp string      `json:"collection_timestamp,omitempty"`
	DataSources         DataSources `json:"data_sources"`
}

// DataSources holds the four optional source payloads. Nil means the source is absent.
type DataSources struct {
	BasicInfo      *RawBasicInfo      `json:"basic_info"`
	FinancialData  *RawFinancialData  `json:"financial_data"`
	NewsData       *RawNewsData       `json:"news_data"`
	PeerComparison *RawPeerComparison `json:"peer_comparison"`
}

// RawBasicInfo leaf values are kept as decoded; any of them may be nil, "N/A" or garbage.
type RawBasicInfo struct {
	CompanyName         any `json:"company_name,omitempty"`
	ShortName           any `json:"short_name,omitempty"`
	Sector              any `json:"sector,omitempty"`
	Industry            any `json:"industry,omitempty"`
	Country             any `json:"country,omitempty"`
	CurrentPrice        any `json:"current_price,omitempty"`
	MarketCap           any `json:"market_cap,omitempty"`
	PERatio             any `json:"pe_ratio,omitempty"`
	EmployeeCount       any `json:"employee_count,omitempty"`
	LongBusinessSummary any `json:"long_business_summary,omitempty"`
	CompanyWebsite      any `json:"company_website,omitempty"`
}

func (r *RawBasicInfo) empty() bool {
	return r == nil || allNil(r.CompanyName, r.ShortName, r.Sector, r.Industry, r.Country,
		r.CurrentPrice, r.MarketCap, r.PERatio, r.EmployeeCount, r.LongBusinessSummary, r.CompanyWebsite)
}

type RawFinancialData struct {
	CurrentPrice any `json:"current_price,omitempty"`
	MonthHigh    any `json:"month_high,omitempty"`
	MonthLow     any `json:"month_low,omitempty"`
	Volatility   any `json:"volatility,omitempty"`
}

func (r *RawFinancialData) empty() bool {
	return r == nil || allNil(r.CurrentPrice, r.MonthHigh, r.MonthLow, r.Volatility)
}

type RawArticle struct {
	Title          any `json:"title,omitempty"`
	Description    any `json:"description,omitempty"`
	Source         any `json:"source,omitempty"`
	PublishedAt    any `json:"published_at,omitempty"`
	URL            any `json:"url,omitempty"`
	RelevanceScore any `json:"relevance_score,omitempty"`
}

type RawNewsData struct {
	Articles []RawArticle `json:"articles"`
}

type RawPeer struct {
	Ticker         any `json:"ticker,omitempty"`
	CompanyName    any `json:"company_name,omitempty"`
	MarketCap      any `json:"market_cap,omitempty"`
	PERatio        any `json:"pe_ratio,omitempty"`
	PriceToBook    any `json:"price_to_book,omitempty"`
	ProfitMargin   any `json:"profit_margin,omitempty"`
	DebtToEquity   any `json:"debt_to_equity,omitempty"`
	ReturnOnEquity any `json:"return_on_equity,omitempty"`
	CurrentPrice   any `json:"current_price,omitempty"`
}

type RawPeerComparison struct {
	Sector                any            `json:"sector,omitempty"`
	Industry              any            `json:"industry,omitempty"`
	PeerCompanies         []RawPeer      `json:"peer_companies"`
	CurrentCompanyMetrics map[string]any `json:"current_company_metrics,omitempty"`
	SectorAverages        map[string]any `json:"sector_averages,omitempty"`
	RelativePositioning   map[string]any `json:"relative_positioning,omitempty"`
}

func allNil(vs ...any) bool {
	for _, v := range vs {
		if v != nil {
			return false
		}
	}
	return true
}

type MarketCapCategory string

const (
	MegaCap          MarketCapCategory = "mega_cap"
	LargeCap         MarketCapCategory = "large_cap"
	MidCap           MarketCapCategory = "mid_cap"
	SmallCap         MarketCapCategory = "small_cap"
	MicroCap         MarketCapCategory = "micro_cap"
	MarketCapUnknown MarketCapCategory = "unknown"
)

type PECategory string

const (
	PENegativeOrNone   PECategory = "negative_or_none"
	PEUndervalued      PECategory = "undervalued"
	PEFairValue        PECategory = "fair_value"
	PEOvervalued       PECategory = "overvalued"
	PEHighlyOvervalued PECategory = "highly_overvalued"
	PECategoryUnknown  PECategory = "unknown"
)

// BasicInfo is the cleaned company profile.
type BasicInfo struct {
	Ticker              string            `json:"ticker"`
	CompanyName         string            `json:"company_name"`
	Sector              string            `json:"sector"`
	Industry            string            `json:"industry"`
	Country             string            `json:"country"`
	CurrentPrice        float64           `json:"current_price"`
	MarketCap           float64           `json:"market_cap"`
	MarketCapBillions   float64           `json:"market_cap_billions"`
	MarketCapCategory   MarketCapCategory `json:"market_cap_category"`
	PERatio             float64           `json:"pe_ratio"`
	PECategory          PECategory        `json:"pe_category"`
	EmployeeCount       int               `json:"employee_count"`
	BusinessDescription string            `json:"business_description"`
	Website             string            `json:"website"`
}

// EmptyBasicInfo is the placeholder used when no profile was collected.
func EmptyBasicInfo() BasicInfo {
	return BasicInfo{
		Ticker:              "UNKNOWN",
		CompanyName:         unknownText,
		Sector:              unknownText,
		Industry:            unknownText,
		Country:             unknownText,
		MarketCapCategory:   MarketCapUnknown,
		PECategory:          PECategoryUnknown,
		BusinessDescription: noDescriptionText,
		Website:             "N/A",
	}
}

type VolatilityCategory string

const (
	VolatilityLow     VolatilityCategory = "low"
	VolatilityMedium  VolatilityCategory = "medium"
	VolatilityHigh    VolatilityCategory = "high"
	VolatilityUnknown VolatilityCategory = "unknown"
)

type RiskLevel string

const (
	RiskConservative RiskLevel = "conservative"
	RiskModerate     RiskLevel = "moderate"
	RiskAggressive   RiskLevel = "aggressive"
	RiskUnknown      RiskLevel = "unknown"
)

type PriceStrength string

const (
	StrengthStrong   PriceStrength = "strong"
	StrengthModerate PriceStrength = "moderate"
	StrengthNeutral  PriceStrength = "neutral"
	StrengthWeak     PriceStrength = "weak"
	StrengthVeryWeak PriceStrength = "very_weak"
)

// FinancialMetrics is the cleaned price and risk profile over the last month.
type FinancialMetrics struct {
	CurrentPrice         float64            `json:"current_price"`
	MonthHigh            float64            `json:"month_high"`
	MonthLow             float64            `json:"month_low"`
	PriceRange           float64            `json:"price_range"`
	PricePositionInRange float64            `json:"price_position_in_range"`
	DistanceFromHigh     float64            `json:"distance_from_high"`
	DistanceFromLow      float64            `json:"distance_from_low"`
	VolatilityPercent    float64            `json:"volatility_percent"`
	VolatilityCategory   VolatilityCategory `json:"volatility_category"`
	RiskLevel            RiskLevel          `json:"risk_level"`
	MomentumScore        float64            `json:"momentum_score"`
	StabilityScore       float64            `json:"stability_score"`
	PriceStrength        PriceStrength      `json:"price_strength"`
}

// EmptyFinancialMetrics carries the neutral values used when no price data exists.
func EmptyFinancialMetrics() FinancialMetrics {
	return FinancialMetrics{
		PricePositionInRange: 0.5,
		VolatilityCategory:   VolatilityUnknown,
		RiskLevel:            RiskUnknown,
		MomentumScore:        50,
		StabilityScore:       50,
		PriceStrength:        StrengthNeutral,
	}
}

type NewsCoverage string

const (
	CoverageHigh   NewsCoverage = "high"
	CoverageMedium NewsCoverage = "medium"
	CoverageLow    NewsCoverage = "low"
	CoverageNone   NewsCoverage = "none"
)

type Article struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Source         string  `json:"source"`
	PublishedAt    string  `json:"published_date"`
	RelevanceScore float64 `json:"relevance_score"`
	URL            string  `json:"url"`
}

// NewsSentiment is the cleaned news coverage summary.
type NewsSentiment struct {
	TotalArticles       int          `json:"total_articles"`
	Articles            []Article    `json:"articles"`
	AverageRelevance    float64      `json:"average_relevance"`
	NewsCoverage        NewsCoverage `json:"news_coverage"`
	TopSources          []string     `json:"top_sources"`
	SourceDiversity     int          `json:"source_diversity"`
	RecentNewsSummary   string       `json:"recent_news_summary"`
	NewsFreshness       string       `json:"news_freshness"`
	MediaAttentionScore float64      `json:"media_attention_score"`
}

const noNewsSummary = "No recent news available"

func EmptyNewsSentiment() NewsSentiment {
	return NewsSentiment{
		Articles:            []Article{},
		NewsCoverage:        CoverageNone,
		TopSources:          []string{},
		RecentNewsSummary:   noNewsSummary,
		NewsFreshness:       "no_news",
		MediaAttentionScore: 50,
	}
}

type Peer struct {
	Ticker         string  `json:"ticker"`
	CompanyName    string  `json:"company_name"`
	MarketCap      float64 `json:"market_cap"`
	PERatio        float64 `json:"pe_ratio"`
	PriceToBook    float64 `json:"price_to_book"`
	ProfitMargin   float64 `json:"profit_margin"`
	DebtToEquity   float64 `json:"debt_to_equity"`
	ReturnOnEquity float64 `json:"return_on_equity"`
	CurrentPrice   float64 `json:"current_price"`
}

type SectorPositioning struct {
	OverallPosition string   `json:"overall_position"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
}

// CompetitiveScores are flattened into the peer record.
type CompetitiveScores struct {
	OverallCompetitiveScore  float64 `json:"overall_competitive_score"`
	ValuationVsPeers         float64 `json:"valuation_vs_peers"`
	ProfitabilityVsPeers     float64 `json:"profitability_vs_peers"`
	FinancialStrengthVsPeers float64 `json:"financial_strength_vs_peers"`
}

// PeerPosition is the cleaned competitive position against sector peers.
type PeerPosition struct {
	Sector                string             `json:"sector"`
	Industry              string             `json:"industry"`
	PeerCount             int                `json:"peer_count"`
	Peers                 []Peer             `json:"peer_companies"`
	CurrentCompanyMetrics map[string]float64 `json:"current_company_metrics"`
	SectorPositioning     SectorPositioning  `json:"sector_positioning"`
	CompetitiveAdvantages []string           `json:"competitive_advantages"`
	CompetitiveWeaknesses []string           `json:"competitive_weaknesses"`
	CompetitiveScores
}

func EmptyPeerPosition() PeerPosition {
	return PeerPosition{
		Sector:                unknownText,
		Industry:              unknownText,
		Peers:                 []Peer{},
		CurrentCompanyMetrics: map[string]float64{},
		SectorPositioning:     SectorPositioning{OverallPosition: "average", Strengths: []string{}, Weaknesses: []string{}},
		CompetitiveScores: CompetitiveScores{
			OverallCompetitiveScore:  50,
			ValuationVsPeers:         50,
			ProfitabilityVsPeers:     50,
			FinancialStrengthVsPeers: 50,
		},
		CompetitiveAdvantages: []string{},
		CompetitiveWeaknesses: []string{},
	}
}

// AnalysisFeatures are the derived investment signals.
type AnalysisFeatures struct {
	CompanySize             MarketCapCategory `json:"company_size"`
	ValuationAttractiveness float64           `json:"valuation_attractiveness"`
	FinancialStability      float64           `json:"financial_stability"`
	GrowthMomentum          float64           `json:"growth_momentum"`
	MediaCoverageQuality    float64           `json:"media_coverage_quality"`
	NewsSentimentTrend      string            `json:"news_sentiment_trend"`
	MarketPositionStrength  float64           `json:"market_position_strength"`
	SectorLeadership        float64           `json:"sector_leadership"`
	VolatilityRisk          float64           `json:"volatility_risk"`
	CompetitiveRisk         float64           `json:"competitive_risk"`
	KeyStrengths            []string          `json:"key_strengths"`
	KeyRisks                []string          `json:"key_risks"`
	InvestmentHighlights    []string          `json:"investment_highlights"`
}

type Recommendation string

const (
	StrongBuy Recommendation = "STRONG BUY"
	Buy       Recommendation = "BUY"
	Hold      Recommendation = "HOLD"
	WeakHold  Recommendation = "WEAK HOLD"
	Sell      Recommendation = "SELL"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// InvestmentScores is the weighted composite result with per-component grades.
type InvestmentScores struct {
	OverallScore             float64        `json:"overall_investment_score"`
	FinancialHealthScore     float64        `json:"financial_health_score"`
	MarketSentimentScore     float64        `json:"market_sentiment_score"`
	CompetitivePositionScore float64        `json:"competitive_position_score"`
	MomentumScore            float64        `json:"momentum_score"`
	OverallGrade             string         `json:"overall_grade"`
	FinancialGrade           string         `json:"financial_grade"`
	SentimentGrade           string         `json:"sentiment_grade"`
	CompetitiveGrade         string         `json:"competitive_grade"`
	Recommendation           Recommendation `json:"recommendation"`
	ConfidenceLevel          Confidence     `json:"confidence_level"`
}

type KeyMetrics struct {
	PERatio       float64       `json:"pe_ratio"`
	Volatility    string        `json:"volatility"`
	PriceMomentum PriceStrength `json:"price_momentum"`
}

type ExecutiveSummary struct {
	Company      string     `json:"company"`
	Sector       string     `json:"sector"`
	MarketCap    string     `json:"market_cap"`
	CurrentPrice string     `json:"current_price"`
	KeyMetrics   KeyMetrics `json:"key_metrics"`
}

type FinancialHighlights struct {
	Valuation   string             `json:"valuation"`
	Performance string             `json:"performance"`
	RiskProfile RiskLevel          `json:"risk_profile"`
	Stability   VolatilityCategory `json:"stability"`
}

type MarketContext struct {
	RecentNewsCount int          `json:"recent_news_count"`
	MediaAttention  NewsCoverage `json:"media_attention"`
	NewsQuality     string       `json:"news_quality"`
	TopSources      []string     `json:"top_sources"`
}

type CompetitiveContext struct {
	Sector           string   `json:"sector"`
	PeerCount        int      `json:"peer_count"`
	CompetitiveScore string   `json:"competitive_score"`
	Advantages       []string `json:"advantages"`
	Challenges       []string `json:"challenges"`
}

type InvestmentThesis struct {
	OverallScore float64  `json:"overall_score"`
	KeyStrengths []string `json:"key_strengths"`
	KeyRisks     []string `json:"key_risks"`
	Highlights   []string `json:"investment_highlights"`
}

// LLMContext is the compact projection handed to the narrative generator.
type LLMContext struct {
	ExecutiveSummary    ExecutiveSummary    `json:"executive_summary"`
	FinancialHighlights FinancialHighlights `json:"financial_highlights"`
	MarketContext       MarketContext       `json:"market_context"`
	CompetitivePosition CompetitiveContext  `json:"competitive_position"`
	InvestmentThesis    InvestmentThesis    `json:"investment_thesis"`
}

type DataQuality struct {
	BasicInfoQuality     bool `json:"basic_info_quality"`
	FinancialDataQuality bool `json:"financial_data_quality"`
	NewsDataQuality      bool `json:"news_data_quality"`
	PeerDataQuality      bool `json:"peer_data_quality"`
}

// Count returns how many sources carried usable data.
func (q DataQuality) Count() int {
	n := 0
	for _, ok := range []bool{q.BasicInfoQuality, q.FinancialDataQuality, q.NewsDataQuality, q.PeerDataQuality} {
		if ok {
			n++
		}
	}
	return n
}

// CleanDataset is the complete pipeline output.
type CleanDataset struct {
	Ticker              string           `json:"ticker"`
	CompanyName         string           `json:"company_name"`
	ProcessingTimestamp string           `json:"processing_timestamp"`
	CompanyOverview     BasicInfo        `json:"company_overview"`
	FinancialMetrics    FinancialMetrics `json:"financial_metrics"`
	MarketSentiment     NewsSentiment    `json:"market_sentiment"`
	CompetitivePosition PeerPosition     `json:"competitive_position"`
	InvestmentAnalysis  AnalysisFeatures `json:"investment_analysis"`
	InvestmentScores    InvestmentScores `json:"investment_scores"`
	LLMContext          LLMContext       `json:"llm_context"`
	DataQuality         DataQuality      `json:"data_quality"`
	CleaningLog         []string         `json:"cleaning_log"`
	ReadyForLLM         bool             `json:"ready_for_llm"`
}
