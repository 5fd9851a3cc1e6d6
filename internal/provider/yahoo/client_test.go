package yahoo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oraclewow/oracle-backend/internal/ratelimit"
	"github.com/oraclewow/oracle-backend/pkg/config"
	"github.com/oraclewow/oracle-backend/pkg/httputil"
	"github.com/oraclewow/oracle-backend/pkg/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.YahooConfig{
		BaseURL:     server.URL,
		MinInterval: time.Millisecond,
	}
	return New(cfg, httputil.New(logger.Nop()).DisableRetry(), ratelimit.New(), logger.Nop())
}

func TestFetchQuoteDerivesChangeFromPreviousClose(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/NVDA" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "1d" || q.Get("range") != "1d" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"meta": {
						"symbol": "NVDA",
						"regularMarketPrice": 110.0,
						"previousClose": 100.0,
						"regularMarketVolume": 45000000
					}
				}]
			}
		}`))
	})

	quote, err := client.FetchQuote(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("FetchQuote() error = %v", err)
	}

	if quote.Symbol != "NVDA" {
		t.Errorf("Symbol = %q", quote.Symbol)
	}
	if quote.Price != 110.0 {
		t.Errorf("Price = %v", quote.Price)
	}
	if quote.Change != 10.0 {
		t.Errorf("Change = %v, want 10", quote.Change)
	}
	if math.Abs(quote.ChangePercent-10.0) > 1e-9 {
		t.Errorf("ChangePercent = %v, want 10", quote.ChangePercent)
	}
	if quote.Volume != 45_000_000 {
		t.Errorf("Volume = %v", quote.Volume)
	}
	if quote.Source != "Yahoo Finance" {
		t.Errorf("Source = %q", quote.Source)
	}
}

func TestFetchQuoteNoChartResult(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": []}}`))
	})

	if _, err := client.FetchQuote(context.Background(), "ZZZZ"); err == nil {
		t.Fatal("expected error for missing chart result")
	}
}

func TestFetchQuoteZeroPreviousClose(t *testing.T) {
	// A zero previous close would divide change percent by zero.
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": [{"meta": {"symbol": "X", "regularMarketPrice": 5.0, "previousClose": 0}}]}}`))
	})

	if _, err := client.FetchQuote(context.Background(), "X"); err == nil {
		t.Fatal("expected error for zero previous close")
	}
}

func TestFetchQuoteHTTPError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	if _, err := client.FetchQuote(context.Background(), "NVDA"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
