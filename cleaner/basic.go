package cleaner

import "fmt"

// Market-cap breakpoints in dollars.
const (
	megaCapFloor  = 200e9
	largeCapFloor = 10e9
	midCapFloor   = 2e9
	smallCapFloor = 0.3e9
)

// CleanBasicInfo normalizes the company profile.
func CleanBasicInfo(raw *RawBasicInfo, ticker string) (BasicInfo, []string) {
	if raw.empty() {
		return EmptyBasicInfo(), []string{fmt.Sprintf("No basic info available for %s", ticker)}
	}

	marketCap := SafeFloat(raw.MarketCap, 0)
	pe := SafeFloat(raw.PERatio, 0)

	info := BasicInfo{
		Ticker:              ticker,
		CompanyName:         CleanText(raw.CompanyName),
		Sector:              StandardizeSector(raw.Sector),
		Industry:            CleanText(raw.Industry),
		Country:             CleanText(raw.Country),
		CurrentPrice:        SafeFloat(raw.CurrentPrice, 0),
		MarketCap:           marketCap,
		MarketCapBillions:   Round(marketCap/1e9, 2),
		MarketCapCategory:   CategorizeMarketCap(marketCap),
		PERatio:             pe,
		PECategory:          CategorizePE(pe),
		EmployeeCount:       SafeInt(raw.EmployeeCount, 0),
		BusinessDescription: TruncateDescription(raw.LongBusinessSummary, DefaultDescriptionLength),
		Website:             optionalText(raw.CompanyWebsite, "N/A"),
	}
	if info.CompanyName == unknownText {
		if short := CleanText(raw.ShortName); short != unknownText {
			info.CompanyName = short
		}
	}

	return info, []string{fmt.Sprintf("INFO: Basic info cleaned: %s (%s)", info.CompanyName, info.Sector)}
}

// CategorizeMarketCap buckets a dollar market capitalization.
func CategorizeMarketCap(cap float64) MarketCapCategory {
	switch {
	case cap == 0:
		return MarketCapUnknown
	case cap >= megaCapFloor:
		return MegaCap
	case cap >= largeCapFloor:
		return LargeCap
	case cap >= midCapFloor:
		return MidCap
	case cap >= smallCapFloor:
		return SmallCap
	default:
		return MicroCap
	}
}

// CategorizePE buckets a price-to-earnings ratio.
func CategorizePE(pe float64) PECategory {
	switch {
	case pe <= 0:
		return PENegativeOrNone
	case pe < 15:
		return PEUndervalued
	case pe < 25:
		return PEFairValue
	case pe < 40:
		return PEOvervalued
	default:
		return PEHighlyOvervalued
	}
}
