package screener

import "testing"

func ptrF(v float64) *float64 { return &v }

func TestScoreIsDeterministic(t *testing.T) {
	q := Quote{Symbol: "AAPL", Price: 190, ChangePercent: 2.5, PE: ptrF(28), Sector: "Technology", Volume: 50_000_000}
	first := Score(&q)
	for i := 0; i < 10; i++ {
		if got := Score(&q); got != first {
			t.Fatalf("score changed between calls: %d != %d", got, first)
		}
	}
}

func TestScoreLadders(t *testing.T) {
	tests := []struct {
		name  string
		quote Quote
		want  int
	}{
		{"neutral baseline", Quote{ChangePercent: -3, Sector: "Other"}, 50},
		{"strong momentum", Quote{ChangePercent: 6, Sector: "Other"}, 70},
		{"moderate momentum", Quote{ChangePercent: 3, Sector: "Other"}, 65},
		{"slight gain", Quote{ChangePercent: 0.5, Sector: "Other"}, 60},
		{"small dip", Quote{ChangePercent: -1, Sector: "Other"}, 55},
		{"heavy loss", Quote{ChangePercent: -7, Sector: "Other"}, 35},
		{"cheap valuation", Quote{ChangePercent: -3, PE: ptrF(10), Sector: "Other"}, 65},
		{"fair valuation", Quote{ChangePercent: -3, PE: ptrF(20), Sector: "Other"}, 60},
		{"rich valuation", Quote{ChangePercent: -3, PE: ptrF(30), Sector: "Other"}, 55},
		{"speculative valuation", Quote{ChangePercent: -3, PE: ptrF(40), Sector: "Other"}, 45},
		{"missing pe is neutral", Quote{ChangePercent: -3, PE: nil, Sector: "Other"}, 50},
		{"technology premium", Quote{ChangePercent: -3, Sector: "Technology"}, 60},
		{"healthcare premium", Quote{ChangePercent: -3, Sector: "Healthcare"}, 58},
		{"financials premium", Quote{ChangePercent: -3, Sector: "Financial Services"}, 56},
		{"liquidity bonus", Quote{ChangePercent: -3, Sector: "Other", Volume: 10_000_000}, 55},
		{"thin volume no bonus", Quote{ChangePercent: -3, Sector: "Other", Volume: 9_999_999}, 50},
		{"everything stacked", Quote{ChangePercent: 6, PE: ptrF(10), Sector: "Technology", Volume: 20_000_000}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(&tt.quote); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreClampsToRange(t *testing.T) {
	// Stacked bonuses would exceed 100 without the clamp.
	high := Quote{ChangePercent: 6, PE: ptrF(10), Sector: "Technology", Volume: 50_000_000}
	if got := Score(&high); got != 100 {
		t.Errorf("high score not clamped: got %d", got)
	}

	low := Quote{ChangePercent: -20, PE: ptrF(80), Sector: "Other"}
	if got := Score(&low); got < 0 {
		t.Errorf("score below zero: got %d", got)
	}
}

func TestRecommendLadder(t *testing.T) {
	tests := []struct {
		name          string
		score         int
		changePercent float64
		want          Recommendation
	}{
		{"strong buy with momentum", 90, 2.0, Buy},
		{"high score negative momentum still buys", 90, -1.0, Buy},
		{"buy threshold", 70, 0.0, Buy},
		{"upper hold", 65, 1.0, Hold},
		{"lower hold", 45, -2.0, Hold},
		{"sell", 30, -4.0, Sell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.score, tt.changePercent); got != tt.want {
				t.Errorf("Recommend(%d, %.1f) = %s, want %s", tt.score, tt.changePercent, got, tt.want)
			}
		})
	}
}

func TestScoreQuoteCarriesRecommendation(t *testing.T) {
	q := Quote{Symbol: "NVDA", Price: 880, ChangePercent: 6, PE: ptrF(10), Sector: "Technology", Volume: 40_000_000}
	scored := ScoreQuote(q)
	if scored.Score != 100 {
		t.Fatalf("Score = %d, want 100", scored.Score)
	}
	if scored.Recommendation != Buy {
		t.Errorf("Recommendation = %s, want %s", scored.Recommendation, Buy)
	}
	if scored.Symbol != "NVDA" {
		t.Errorf("embedded quote lost: symbol = %s", scored.Symbol)
	}
}
