package screener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// fakeSource records fetch calls and serves canned quotes or errors.
type fakeSource struct {
	name   string
	mu     sync.Mutex
	calls  map[string]int
	quotes map[string]*Quote
	err    error
}

func newFakeSource(name string) *fakeSource {
	return &fakeSource{
		name:   name,
		calls:  make(map[string]int),
		quotes: make(map[string]*Quote),
	}
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchQuote(_ context.Context, symbol string) (*Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: symbol %s not found", f.name, symbol)
	}
	cp := *q
	return &cp, nil
}

func (f *fakeSource) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func (f *fakeSource) serve(symbol string, price, changePct float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[symbol] = &Quote{
		Symbol:        symbol,
		Price:         price,
		ChangePercent: changePct,
		Source:        f.name,
	}
}

func testAggregator(t *testing.T, sources ...Source) (*Aggregator, *MemoryCache) {
	t.Helper()
	cache := NewMemoryCache(5*time.Minute, logger.Nop())
	return NewAggregator(sources, cache, 1, logger.Nop()), cache
}

func TestScreenPrimarySuccessSkipsFallbacks(t *testing.T) {
	primary := newFakeSource("fmp")
	secondary := newFakeSource("alphavantage")
	primary.serve("AAPL", 190.0, 1.2)

	agg, _ := testAggregator(t, primary, secondary)

	results, err := agg.Screen(context.Background(), []string{"AAPL"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)
	assert.Equal(t, "fmp", results[0].Source)
	assert.Equal(t, 1, primary.callCount("AAPL"))
	assert.Equal(t, 0, secondary.callCount("AAPL"), "secondary must not be touched on primary success")
}

func TestScreenFallsThroughToTertiary(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.err = errors.New("rate limited")
	secondary := newFakeSource("alphavantage")
	secondary.err = errors.New("quota exhausted")
	tertiary := newFakeSource("yahoo")
	tertiary.serve("MSFT", 410.5, -0.4)

	agg, _ := testAggregator(t, primary, secondary, tertiary)

	results, err := agg.Screen(context.Background(), []string{"MSFT"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "yahoo", results[0].Source)
	assert.Equal(t, 1, primary.callCount("MSFT"))
	assert.Equal(t, 1, secondary.callCount("MSFT"))
	assert.Equal(t, 1, tertiary.callCount("MSFT"))
}

func TestScreenDropsSymbolWhenAllProvidersFail(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.serve("AAPL", 190.0, 1.2)
	secondary := newFakeSource("alphavantage")

	agg, _ := testAggregator(t, primary, secondary)

	// BROKEN is unknown to both sources; the batch must still succeed
	// with the failing symbol silently omitted.
	results, err := agg.Screen(context.Background(), []string{"AAPL", "BROKEN"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "AAPL", results[0].Symbol)
}

func TestScreenRejectsPricelessQuoteAndFallsThrough(t *testing.T) {
	// A provider that answers without a price must count as a failure,
	// not feed a zero-priced quote into scoring.
	primary := newFakeSource("fmp")
	primary.serve("AAPL", 0, 1.2)
	secondary := newFakeSource("alphavantage")
	secondary.serve("AAPL", 190.0, 1.2)

	agg, _ := testAggregator(t, primary, secondary)

	results, err := agg.Screen(context.Background(), []string{"AAPL"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alphavantage", results[0].Source)
	assert.Equal(t, 190.0, results[0].Price)
}

func TestScreenServesRepeatFromCache(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.serve("NVDA", 880.0, 3.1)

	agg, _ := testAggregator(t, primary)

	_, err := agg.Screen(context.Background(), []string{"NVDA"}, 0)
	require.NoError(t, err)
	_, err = agg.Screen(context.Background(), []string{"NVDA"}, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, primary.callCount("NVDA"), "second screen must be a cache hit")
}

func TestScreenRanksByScoreDescending(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.serve("WIN", 100.0, 6.0)   // change > 5 -> +20
	primary.serve("MID", 100.0, 1.0)   // change > 0 -> +10
	primary.serve("LOSE", 100.0, -8.0) // change < -5 -> -15

	agg, _ := testAggregator(t, primary)

	results, err := agg.Screen(context.Background(), []string{"LOSE", "MID", "WIN"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "WIN", results[0].Symbol)
	assert.Equal(t, "MID", results[1].Symbol)
	assert.Equal(t, "LOSE", results[2].Symbol)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestScreenRankingIsStableOnTies(t *testing.T) {
	primary := newFakeSource("fmp")
	// Identical inputs score identically, so order must follow the request.
	primary.serve("AAA", 50.0, 1.0)
	primary.serve("BBB", 50.0, 1.0)
	primary.serve("CCC", 50.0, 1.0)

	agg, _ := testAggregator(t, primary)

	results, err := agg.Screen(context.Background(), []string{"CCC", "AAA", "BBB"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "CCC", results[0].Symbol)
	assert.Equal(t, "AAA", results[1].Symbol)
	assert.Equal(t, "BBB", results[2].Symbol)
}

func TestScreenTruncatesToMaxResults(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.serve("AAA", 10.0, 6.0)
	primary.serve("BBB", 10.0, 1.0)
	primary.serve("CCC", 10.0, -8.0)

	agg, _ := testAggregator(t, primary)

	results, err := agg.Screen(context.Background(), []string{"AAA", "BBB", "CCC"}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "AAA", results[0].Symbol)
	assert.Equal(t, "BBB", results[1].Symbol)
}

func TestScreenDedupesAndUppercasesSymbols(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.serve("AAPL", 190.0, 1.2)

	agg, _ := testAggregator(t, primary)

	results, err := agg.Screen(context.Background(), []string{"aapl", " AAPL ", "AAPL"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, primary.callCount("AAPL"))
}

func TestScreenConcurrentWorkers(t *testing.T) {
	primary := newFakeSource("fmp")
	symbols := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		sym := fmt.Sprintf("SYM%d", i)
		primary.serve(sym, 100.0, float64(i))
		symbols = append(symbols, sym)
	}

	cache := NewMemoryCache(5*time.Minute, logger.Nop())
	agg := NewAggregator([]Source{primary}, cache, 4, logger.Nop())

	results, err := agg.Screen(context.Background(), symbols, 0)
	require.NoError(t, err)
	assert.Len(t, results, 8)
	for _, sym := range symbols {
		assert.Equal(t, 1, primary.callCount(sym))
	}
}

func TestScreenHonorsContextCancellation(t *testing.T) {
	primary := newFakeSource("fmp")
	primary.serve("AAPL", 190.0, 1.2)

	agg, _ := testAggregator(t, primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := agg.Screen(ctx, []string{"AAPL"}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
