package screener

// sectorMapping assigns the screening universe to dashboard sectors.
// Symbols outside the mapping fall back to "Other".
var sectorMapping = map[string][]string{
	"Technology":             {"AAPL", "MSFT", "GOOGL", "META", "NVDA", "ADBE", "INTC", "AMD", "ORCL", "CSCO"},
	"Consumer Discretionary": {"AMZN", "TSLA", "HD", "DIS", "NFLX"},
	"Financial Services":     {"JPM", "V", "MA", "PYPL"},
	"Healthcare":             {"JNJ", "UNH", "PFE"},
	"Consumer Staples":       {"PG"},
	"Communication Services": {"CRM"},
}

// symbolSector is the inverted mapping, built once at init.
var symbolSector = func() map[string]string {
	m := make(map[string]string)
	for sector, symbols := range sectorMapping {
		for _, s := range symbols {
			m[s] = sector
		}
	}
	return m
}()

// SectorOf returns the sector for a symbol, or "Other" when unmapped.
func SectorOf(symbol string) string {
	if sector, ok := symbolSector[symbol]; ok {
		return sector
	}
	return "Other"
}

// companyNames provides display names for quote-only providers that
// return no company metadata.
var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corp.",
	"GOOGL": "Alphabet Inc.",
	"AMZN":  "Amazon.com Inc.",
	"TSLA":  "Tesla Inc.",
	"META":  "Meta Platforms",
	"NVDA":  "NVIDIA Corp.",
	"JPM":   "JPMorgan Chase",
	"JNJ":   "Johnson & Johnson",
	"V":     "Visa Inc.",
	"PG":    "Procter & Gamble",
	"UNH":   "UnitedHealth Group",
	"HD":    "Home Depot",
	"MA":    "Mastercard Inc.",
	"DIS":   "Walt Disney Co.",
	"PYPL":  "PayPal Holdings",
	"ADBE":  "Adobe Inc.",
	"NFLX":  "Netflix Inc.",
	"CRM":   "Salesforce Inc.",
	"INTC":  "Intel Corp.",
	"AMD":   "Advanced Micro Devices",
	"ORCL":  "Oracle Corp.",
	"CSCO":  "Cisco Systems",
	"PFE":   "Pfizer Inc.",
}

// CompanyName returns the display name for a symbol, with a generic
// fallback for symbols outside the table.
func CompanyName(symbol string) string {
	if name, ok := companyNames[symbol]; ok {
		return name
	}
	return symbol + " Corp."
}
