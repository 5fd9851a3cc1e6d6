// Package yahoo adapts the Yahoo Finance chart endpoint.
// It is the tertiary provider: no API key, generous limits, but the
// chart meta lacks PE and market cap so quotes score on price alone.
package yahoo

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

// Client fetches quotes from the Yahoo Finance chart API.
type Client struct {
	http    *httputil.Client
	limiter *ratelimit.Limiter
	baseURL string
	logger  *logger.Logger
}

type chartMeta struct {
	Symbol              string  `json:"symbol"`
	RegularMarketPrice  float64 `json:"regularMarketPrice"`
	PreviousClose       float64 `json:"previousClose"`
	RegularMarketVolume int64   `json:"regularMarketVolume"`
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Meta *chartMeta `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// New creates a Yahoo client and registers its interval gate.
func New(cfg config.YahooConfig, httpClient *httputil.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	limiter.Register(provider.YahooID, ratelimit.Interval(cfg.MinInterval))

	return &Client{
		http:    httpClient,
		limiter: limiter,
		baseURL: cfg.BaseURL,
		logger:  log.WithField("provider", provider.YahooID),
	}
}

// Name returns the provider identifier used in logs and quote sources.
func (c *Client) Name() string { return provider.YahooID }

// FetchQuote retrieves the daily chart and derives change figures from
// the regular market price against the previous close.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*screener.Quote, error) {
	if err := c.limiter.Acquire(ctx, provider.YahooID); err != nil {
		return nil, provider.Wrap(provider.YahooID, symbol, "rate limit wait", err)
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	resp, err := c.http.Get(ctx, reqURL)
	if err != nil {
		return nil, provider.Wrap(provider.YahooID, symbol, "request failed", err)
	}

	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, provider.Errf(provider.YahooID, symbol, "unexpected status %d", resp.StatusCode)
	}

	var envelope chartEnvelope
	if err := provider.DecodeJSON(resp, &envelope); err != nil {
		return nil, provider.Wrap(provider.YahooID, symbol, "bad payload", err)
	}

	if len(envelope.Chart.Result) == 0 || envelope.Chart.Result[0].Meta == nil {
		return nil, provider.Errf(provider.YahooID, symbol, "no chart result")
	}

	meta := envelope.Chart.Result[0].Meta
	if meta.PreviousClose == 0 {
		return nil, provider.Errf(provider.YahooID, symbol, "previous close unavailable")
	}

	change := meta.RegularMarketPrice - meta.PreviousClose
	changePercent := change / meta.PreviousClose * 100

	c.logger.WithFields(map[string]interface{}{
		"symbol": meta.Symbol,
		"price":  meta.RegularMarketPrice,
	}).Debug("Fetched quote")

	return &screener.Quote{
		Symbol:        meta.Symbol,
		Price:         meta.RegularMarketPrice,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        meta.RegularMarketVolume,
		Source:        "Yahoo Finance",
	}, nil
}
