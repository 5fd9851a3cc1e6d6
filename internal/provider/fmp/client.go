// Package fmp adapts the Financial Modeling Prep quote endpoint.
// FMP is the primary provider: it is the only one that returns PE and
// market cap, so the screener prefers it over the fallbacks.
package fmp

import (
	"context"
	"fmt"
	"net/url"

	"github.com/oraclewow/oracle-backend/internal/provider"
	"github.com/oraclewow/oracle-backend/internal/ratelimit"
	"github.com/oraclewow/oracle-backend/internal/screener"
	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// Client fetches quotes from Financial Modeling Prep.
type Client struct {
	http    *httputil.Client
	limiter *ratelimit.Limiter
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// quotePayload mirrors one element of the FMP /quote/{symbol} array.
type quotePayload struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	Change            float64  `json:"change"`
	ChangesPercentage float64  `json:"changesPercentage"`
	Volume            int64    `json:"volume"`
	MarketCap         *int64   `json:"marketCap"`
	PE                *float64 `json:"pe"`
}

// New creates an FMP client and registers its rate limit gate.
// The free tier allows one call per second.
func New(cfg config.FMPConfig, httpClient *httputil.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	limiter.Register(provider.FMPID, ratelimit.Interval(cfg.MinInterval))

	return &Client{
		http:    httpClient,
		limiter: limiter,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  log.WithField("provider", provider.FMPID),
	}
}

// Name returns the provider identifier used in logs and quote sources.
func (c *Client) Name() string { return provider.FMPID }

// FetchQuote retrieves a single quote. The rate limit gate is acquired
// before the request goes out, never after.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*screener.Quote, error) {
	if err := c.limiter.Acquire(ctx, provider.FMPID); err != nil {
		return nil, provider.Wrap(provider.FMPID, symbol, "rate limit wait", err)
	}

	reqURL := fmt.Sprintf("%s/quote/%s?apikey=%s", c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey))

	resp, err := c.http.Get(ctx, reqURL)
	if err != nil {
		return nil, provider.Wrap(provider.FMPID, symbol, "request failed", err)
	}

	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, provider.Errf(provider.FMPID, symbol, "unexpected status %d", resp.StatusCode)
	}

	var payload []quotePayload
	if err := provider.DecodeJSON(resp, &payload); err != nil {
		return nil, provider.Wrap(provider.FMPID, symbol, "bad payload", err)
	}

	if len(payload) == 0 {
		return nil, provider.Errf(provider.FMPID, symbol, "empty quote array")
	}

	q := payload[0]
	c.logger.WithFields(map[string]interface{}{
		"symbol": q.Symbol,
		"price":  q.Price,
	}).Debug("Fetched quote")

	return &screener.Quote{
		Symbol:        q.Symbol,
		Name:          q.Name,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangesPercentage,
		Volume:        q.Volume,
		MarketCap:     q.MarketCap,
		PE:            q.PE,
		Source:        "FMP",
	}, nil
}
