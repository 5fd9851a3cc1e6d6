package screener

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// Source is one market data provider in the fallback chain.
// A failed fetch is an error value; it must never panic into the
// aggregator or abort the batch.
type Source interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*Quote, error)
}

// Aggregator orchestrates the screening pipeline: cache lookup, provider
// fallback in priority order, scoring, and ranking.
// ⭐ SSOT: provider fallback order lives here and nowhere else.
type Aggregator struct {
	sources []Source // priority order, primary first
	cache   Cache
	workers int
	logger  *logger.Logger
}

// NewAggregator creates an aggregator over the given fallback chain.
// workers bounds parallelism across symbols; 1 processes sequentially.
func NewAggregator(sources []Source, cache Cache, workers int, log *logger.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		sources: sources,
		cache:   cache,
		workers: workers,
		logger:  log.WithField("module", "screener"),
	}
}

// Screen fetches, scores, and ranks the requested symbols.
//
// Symbols that fail on every provider are dropped from the result: one
// bad symbol must not abort the batch, and omissions are silent by
// design (the dashboard simply shows fewer rows). The returned list is
// sorted by score descending, stable on the input order, and truncated
// to maxResults when positive.
func (a *Aggregator) Screen(ctx context.Context, symbols []string, maxResults int) ([]ScoredQuote, error) {
	targets := dedupeUpper(symbols)

	a.logger.WithFields(map[string]interface{}{
		"symbols":     len(targets),
		"max_results": maxResults,
		"workers":     a.workers,
	}).Info("Starting screening")

	// Slots indexed by input position keep ranking ties deterministic
	// regardless of worker interleaving.
	slots := make([]*ScoredQuote, len(targets))

	if a.workers == 1 {
		for i, symbol := range targets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slots[i] = a.screenOne(ctx, symbol)
		}
	} else {
		indexCh := make(chan int, len(targets))
		var wg sync.WaitGroup

		for w := 0; w < a.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indexCh {
					if ctx.Err() != nil {
						return
					}
					slots[i] = a.screenOne(ctx, targets[i])
				}
			}()
		}

		for i := range targets {
			indexCh <- i
		}
		close(indexCh)
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	results := make([]ScoredQuote, 0, len(targets))
	for _, s := range slots {
		if s != nil {
			results = append(results, *s)
		}
	}

	// Stable sort: ties keep the original symbol order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}

	a.logger.WithFields(map[string]interface{}{
		"requested": len(targets),
		"returned":  len(results),
	}).Info("Screening completed")

	return results, nil
}

// screenOne resolves a single symbol: cache first, then the fallback
// chain. Returns nil when every provider fails.
func (a *Aggregator) screenOne(ctx context.Context, symbol string) *ScoredQuote {
	if cached, ok := a.cache.Get(ctx, symbol); ok {
		a.logger.WithField("symbol", symbol).Debug("Cache hit")
		scored := ScoreQuote(*cached)
		return &scored
	}

	quote := a.fetchWithFallback(ctx, symbol)
	if quote == nil {
		a.logger.WithField("symbol", symbol).Warn("All providers failed, symbol dropped")
		return nil
	}

	a.cache.Set(ctx, symbol, quote)

	scored := ScoreQuote(*quote)
	a.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  quote.Price,
		"score":  scored.Score,
		"source": quote.Source,
	}).Debug("Scored quote")

	return &scored
}

// fetchWithFallback tries each source in priority order and stops at the
// first success. Failures are values here, not control flow.
func (a *Aggregator) fetchWithFallback(ctx context.Context, symbol string) *Quote {
	for _, source := range a.sources {
		quote, err := source.FetchQuote(ctx, symbol)
		if err != nil {
			a.logger.WithError(err).WithFields(map[string]interface{}{
				"symbol":   symbol,
				"provider": source.Name(),
			}).Debug("Provider fetch failed, falling through")
			continue
		}

		if err := quote.Normalize(); err != nil {
			a.logger.WithError(err).WithField("provider", source.Name()).Debug("Rejected malformed quote")
			continue
		}

		return quote
	}
	return nil
}

// dedupeUpper upper-cases the requested symbols and drops duplicates
// while preserving request order.
func dedupeUpper(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
