package screener

import (
	"fmt"
	"math"
	"strings"
)

// Quote is the canonical normalized market snapshot. Every provider
// adapter maps its own payload into this shape; nothing downstream sees
// provider-specific field names.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"change_percent"`
	Volume        int64    `json:"volume"`
	MarketCap     *int64   `json:"market_cap,omitempty"` // nil = unavailable
	PE            *float64 `json:"pe,omitempty"`         // nil = unavailable
	Sector        string   `json:"sector"`
	Source        string   `json:"source"` // provider that produced it
}

// Recommendation is the screening verdict attached to a scored quote.
type Recommendation string

const (
	Buy  Recommendation = "BUY"
	Hold Recommendation = "HOLD"
	Sell Recommendation = "SELL"
)

// ScoredQuote is a Quote plus its screening score and recommendation.
// Both are pure functions of the quote and carry no lifecycle of their own.
type ScoredQuote struct {
	Quote
	Score          int            `json:"score"`
	Recommendation Recommendation `json:"recommendation"`
}

// Normalize upper-cases the symbol and rejects quotes that violate the
// canonical invariants. A provider response that cannot produce a finite,
// positive price is a fetch failure, never a Quote.
func (q *Quote) Normalize() error {
	q.Symbol = strings.ToUpper(strings.TrimSpace(q.Symbol))
	if q.Symbol == "" {
		return fmt.Errorf("quote has empty symbol")
	}

	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		return fmt.Errorf("quote %s has non-finite price", q.Symbol)
	}
	// A payload that omits the price field unmarshals to zero; that is a
	// fetch failure, not a tradable quote.
	if q.Price <= 0 {
		return fmt.Errorf("quote %s has no price", q.Symbol)
	}
	if math.IsNaN(q.ChangePercent) || math.IsInf(q.ChangePercent, 0) {
		return fmt.Errorf("quote %s has non-finite change percent", q.Symbol)
	}

	if q.Sector == "" {
		q.Sector = SectorOf(q.Symbol)
	}
	if q.Name == "" {
		q.Name = CompanyName(q.Symbol)
	}

	return nil
}

// FormatVolume renders a raw share count on the dashboard scale
// (e.g. 12.3M, 450.0K). The raw integer stays on the Quote so sorting
// and scoring never parse a display string.
func FormatVolume(volume int64) string {
	switch {
	case volume <= 0:
		return "N/A"
	case volume >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(volume)/1_000_000)
	case volume >= 1_000:
		return fmt.Sprintf("%.1fK", float64(volume)/1_000)
	default:
		return fmt.Sprintf("%d", volume)
	}
}

// FormatMarketCap renders a market capitalization for display.
// A nil pointer on the Quote means unavailable and renders as N/A.
func FormatMarketCap(marketCap *int64) string {
	if marketCap == nil || *marketCap <= 0 {
		return "N/A"
	}

	mc := *marketCap
	switch {
	case mc >= 1_000_000_000_000:
		return fmt.Sprintf("%.2fT", float64(mc)/1_000_000_000_000)
	case mc >= 1_000_000_000:
		return fmt.Sprintf("%.0fB", float64(mc)/1_000_000_000)
	case mc >= 1_000_000:
		return fmt.Sprintf("%.0fM", float64(mc)/1_000_000)
	default:
		return fmt.Sprintf("%d", mc)
	}
}

// FormatPE renders a price/earnings ratio for display.
func FormatPE(pe *float64) string {
	if pe == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *pe)
}
