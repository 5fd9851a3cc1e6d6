// Package alphavantage adapts the Alpha Vantage GLOBAL_QUOTE endpoint.
// It is the secondary provider; the free tier caps at five calls per
// rolling minute, enforced by a sliding window gate.
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/oraclewow/oracle-backend/internal/provider"
	"github.com/oraclewow/oracle-backend/internal/ratelimit"
	"github.com/oraclewow/oracle-backend/internal/screener"
	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

// Client fetches quotes from Alpha Vantage.
type Client struct {
	http    *httputil.Client
	limiter *ratelimit.Limiter
	baseURL string
	apiKey  string
	logger  *logger.Logger
}

// globalQuote mirrors the "Global Quote" object. The upstream keys are
// numbered strings; numbers arrive as strings and need parsing.
type globalQuote struct {
	Symbol        string `json:"01. symbol"`
	Price         string `json:"05. price"`
	Volume        string `json:"06. volume"`
	Change        string `json:"09. change"`
	ChangePercent string `json:"10. change percent"`
}

type globalQuoteEnvelope struct {
	GlobalQuote globalQuote `json:"Global Quote"`
}

// New creates an Alpha Vantage client and registers its window gate.
func New(cfg config.AlphaVantageConfig, httpClient *httputil.Client, limiter *ratelimit.Limiter, log *logger.Logger) *Client {
	limiter.Register(provider.AlphaVantageID, ratelimit.Window(cfg.WindowLimit, cfg.Window))

	return &Client{
		http:    httpClient,
		limiter: limiter,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  log.WithField("provider", provider.AlphaVantageID),
	}
}

// Name returns the provider identifier used in logs and quote sources.
func (c *Client) Name() string { return provider.AlphaVantageID }

// FetchQuote retrieves a single quote through the GLOBAL_QUOTE function.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*screener.Quote, error) {
	if err := c.limiter.Acquire(ctx, provider.AlphaVantageID); err != nil {
		return nil, provider.Wrap(provider.AlphaVantageID, symbol, "rate limit wait", err)
	}

	reqURL := fmt.Sprintf("%s?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	resp, err := c.http.Get(ctx, reqURL)
	if err != nil {
		return nil, provider.Wrap(provider.AlphaVantageID, symbol, "request failed", err)
	}

	if resp.StatusCode != 200 {
		resp.Body.Close()
		return nil, provider.Errf(provider.AlphaVantageID, symbol, "unexpected status %d", resp.StatusCode)
	}

	var envelope globalQuoteEnvelope
	if err := provider.DecodeJSON(resp, &envelope); err != nil {
		return nil, provider.Wrap(provider.AlphaVantageID, symbol, "bad payload", err)
	}

	gq := envelope.GlobalQuote
	// Quota exhaustion and unknown symbols both come back as 200 with an
	// empty Global Quote object.
	if gq.Symbol == "" {
		return nil, provider.Errf(provider.AlphaVantageID, symbol, "empty global quote")
	}

	price, err := strconv.ParseFloat(gq.Price, 64)
	if err != nil {
		return nil, provider.Wrap(provider.AlphaVantageID, symbol, "malformed price", err)
	}

	change, err := strconv.ParseFloat(gq.Change, 64)
	if err != nil {
		return nil, provider.Wrap(provider.AlphaVantageID, symbol, "malformed change", err)
	}

	// The upstream renders change percent with a trailing % sign.
	changePercent, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(gq.ChangePercent), "%"), 64)
	if err != nil {
		return nil, provider.Wrap(provider.AlphaVantageID, symbol, "malformed change percent", err)
	}

	volume, _ := strconv.ParseInt(gq.Volume, 10, 64)

	c.logger.WithFields(map[string]interface{}{
		"symbol": gq.Symbol,
		"price":  price,
	}).Debug("Fetched quote")

	return &screener.Quote{
		Symbol:        gq.Symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		Source:        "Alpha Vantage",
	}, nil
}
