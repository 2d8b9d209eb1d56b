package cleaner

import "fmt"

// CleanFinancialData derives range, momentum and risk metrics from monthly price data.
func CleanFinancialData(raw *RawFinancialData, ticker string) (FinancialMetrics, []string) {
	if raw.empty() {
		return EmptyFinancialMetrics(), []string{fmt.Sprintf("No financial data available for %s", ticker)}
	}

	current := SafeFloat(raw.CurrentPrice, 0)
	high := SafeFloat(raw.MonthHigh, 0)
	low := SafeFloat(raw.MonthLow, 0)
	vol := SafeFloat(raw.Volatility, 0)

	position := pricePosition(current, high, low)

	m := FinancialMetrics{
		CurrentPrice:         current,
		MonthHigh:            high,
		MonthLow:             low,
		PricePositionInRange: position,
		VolatilityPercent:    Round(vol, 2),
		VolatilityCategory:   categorizeVolatility(vol),
		RiskLevel:            assessRisk(vol),
		MomentumScore:        Round(position*100, 1),
		StabilityScore:       stabilityScore(vol),
		PriceStrength:        assessPriceStrength(position),
	}
	if high != 0 && low != 0 {
		m.PriceRange = Round(high-low, 2)
	}
	if current != 0 && high != 0 {
		m.DistanceFromHigh = Round((high-current)/high*100, 1)
	}
	if current != 0 && low != 0 {
		m.DistanceFromLow = Round((current-low)/low*100, 1)
	}

	return m, []string{fmt.Sprintf("INFO: Financial data cleaned: Price $%.2f, Vol %.1f%%", current, vol)}
}

// pricePosition is where current sits in [low, high], 0.5 when undefined.
func pricePosition(current, high, low float64) float64 {
	if current == 0 || high == 0 || low == 0 || high == low {
		return 0.5
	}
	p := (current - low) / (high - low)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func categorizeVolatility(vol float64) VolatilityCategory {
	switch {
	case vol == 0:
		return VolatilityUnknown
	case vol < 15:
		return VolatilityLow
	case vol < 30:
		return VolatilityMedium
	default:
		return VolatilityHigh
	}
}

func assessRisk(vol float64) RiskLevel {
	switch {
	case vol == 0:
		return RiskUnknown
	case vol < 20:
		return RiskConservative
	case vol < 35:
		return RiskModerate
	default:
		return RiskAggressive
	}
}

func stabilityScore(vol float64) float64 {
	switch {
	case vol == 0:
		return 50
	case vol < 15:
		return 90
	case vol < 25:
		return 70
	case vol < 35:
		return 50
	default:
		return 25
	}
}

func assessPriceStrength(position float64) PriceStrength {
	switch {
	case position > 0.8:
		return StrengthStrong
	case position > 0.6:
		return StrengthModerate
	case position > 0.4:
		return StrengthNeutral
	case position > 0.2:
		return StrengthWeak
	default:
		return StrengthVeryWeak
	}
}
