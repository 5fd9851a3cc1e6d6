package screener

// Scoring is a pure function of a single Quote: base 50, additive
// adjustments per field, clamped to [0, 100]. Order of adjustments does
// not matter; nothing here reads shared state.

const (
	baseScore = 50

	// highVolumeShares is the "high volume" bonus threshold (10M shares).
	highVolumeShares = 10_000_000
)

// Score computes the screening score for a quote.
func Score(q *Quote) int {
	score := baseScore

	// Daily performance
	switch {
	case q.ChangePercent > 5:
		score += 20
	case q.ChangePercent > 2:
		score += 15
	case q.ChangePercent > 0:
		score += 10
	case q.ChangePercent > -2:
		score += 5
	case q.ChangePercent < -5:
		score -= 15
	}

	// Valuation: unavailable P/E contributes nothing
	if q.PE != nil {
		switch pe := *q.PE; {
		case pe > 0 && pe < 15:
			score += 15
		case pe >= 15 && pe < 25:
			score += 10
		case pe >= 25 && pe < 35:
			score += 5
		case pe >= 35:
			score -= 5
		}
	}

	// Sector tilt
	switch q.Sector {
	case "Technology":
		score += 10
	case "Healthcare":
		score += 8
	case "Financial Services":
		score += 6
	}

	// Liquidity
	if q.Volume >= highVolumeShares {
		score += 5
	}

	// Clamp
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score
}

// Recommend derives the verdict from the score and the daily change.
// The ladder is evaluated top to bottom as written; the first branch is
// intentionally kept even though the second subsumes it.
func Recommend(score int, changePercent float64) Recommendation {
	switch {
	case score >= 85 && changePercent > 0:
		return Buy
	case score >= 70:
		return Buy
	case score >= 60:
		return Hold
	case score >= 40:
		return Hold
	default:
		return Sell
	}
}

// ScoreQuote attaches score and recommendation to a quote.
func ScoreQuote(q Quote) ScoredQuote {
	score := Score(&q)
	return ScoredQuote{
		Quote:          q,
		Score:          score,
		Recommendation: Recommend(score, q.ChangePercent),
	}
}
