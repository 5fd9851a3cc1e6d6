package screener

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		quote   Quote
		wantErr bool
	}{
		{"valid", Quote{Symbol: "AAPL", Price: 190, ChangePercent: 1.2}, false},
		{"lowercase symbol", Quote{Symbol: " aapl ", Price: 190}, false},
		{"empty symbol", Quote{Symbol: "  ", Price: 190}, true},
		{"missing price", Quote{Symbol: "AAPL"}, true},
		{"negative price", Quote{Symbol: "AAPL", Price: -1}, true},
		{"nan price", Quote{Symbol: "AAPL", Price: math.NaN()}, true},
		{"inf price", Quote{Symbol: "AAPL", Price: math.Inf(1)}, true},
		{"nan change", Quote{Symbol: "AAPL", Price: 190, ChangePercent: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quote.Normalize()
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeUppercasesSymbol(t *testing.T) {
	q := Quote{Symbol: " msft ", Price: 410}
	if err := q.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if q.Symbol != "MSFT" {
		t.Errorf("Symbol = %q, want MSFT", q.Symbol)
	}
}

func TestNormalizeBackfillsSectorAndName(t *testing.T) {
	q := Quote{Symbol: "AAPL", Price: 190}
	if err := q.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if q.Sector != "Technology" {
		t.Errorf("Sector = %q, want Technology", q.Sector)
	}
	if q.Name == "" {
		t.Error("Name not backfilled")
	}

	unknown := Quote{Symbol: "ZZZZ", Price: 1}
	if err := unknown.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if unknown.Sector != "Other" {
		t.Errorf("unknown symbol Sector = %q, want Other", unknown.Sector)
	}
	if unknown.Name != "ZZZZ Corp." {
		t.Errorf("unknown symbol Name = %q, want ZZZZ Corp.", unknown.Name)
	}
}

func TestNormalizeKeepsProvidedSectorAndName(t *testing.T) {
	q := Quote{Symbol: "AAPL", Price: 190, Sector: "Consumer Cyclical", Name: "Apple Inc"}
	if err := q.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if q.Sector != "Consumer Cyclical" {
		t.Errorf("provider sector overwritten: %q", q.Sector)
	}
	if q.Name != "Apple Inc" {
		t.Errorf("provider name overwritten: %q", q.Name)
	}
}

func TestFormatVolume(t *testing.T) {
	tests := []struct {
		volume int64
		want   string
	}{
		{0, "N/A"},
		{-1, "N/A"},
		{999, "999"},
		{45_200, "45.2K"},
		{12_300_000, "12.3M"},
	}
	for _, tt := range tests {
		if got := FormatVolume(tt.volume); got != tt.want {
			t.Errorf("FormatVolume(%d) = %q, want %q", tt.volume, got, tt.want)
		}
	}
}

func TestFormatMarketCap(t *testing.T) {
	trillion := int64(2_950_000_000_000)
	billion := int64(45_000_000_000)
	million := int64(850_000_000)

	if got := FormatMarketCap(nil); got != "N/A" {
		t.Errorf("FormatMarketCap(nil) = %q, want N/A", got)
	}
	if got := FormatMarketCap(&trillion); got != "2.95T" {
		t.Errorf("FormatMarketCap(2.95T) = %q", got)
	}
	if got := FormatMarketCap(&billion); got != "45B" {
		t.Errorf("FormatMarketCap(45B) = %q", got)
	}
	if got := FormatMarketCap(&million); got != "850M" {
		t.Errorf("FormatMarketCap(850M) = %q", got)
	}
}
