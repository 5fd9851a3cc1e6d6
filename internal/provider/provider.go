// Package provider holds the pieces shared by the market data adapters.
// Each adapter lives in its own subpackage and implements screener.Source.
package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// IDs used to register rate limit policies. One gate per provider.
const (
	FMPID          = "fmp"
	AlphaVantageID = "alphavantage"
	YahooID        = "yahoo"
)

// FetchError describes a failed quote fetch. Adapters return it so the
// aggregator can log which provider fell through and why.
type FetchError struct {
	Provider string
	Symbol   string
	Reason   string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Provider, e.Symbol, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s %s", e.Provider, e.Symbol, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Errf builds a FetchError without an underlying cause.
func Errf(providerID, symbol, format string, args ...interface{}) *FetchError {
	return &FetchError{Provider: providerID, Symbol: symbol, Reason: fmt.Sprintf(format, args...)}
}

// Wrap builds a FetchError around an underlying cause.
func Wrap(providerID, symbol, reason string, err error) *FetchError {
	return &FetchError{Provider: providerID, Symbol: symbol, Reason: reason, Err: err}
}

// DecodeJSON drains and decodes an HTTP response body into dest.
// The caller keeps ownership of the response; the body is closed here.
func DecodeJSON(resp *http.Response, dest interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}

	return nil
}
