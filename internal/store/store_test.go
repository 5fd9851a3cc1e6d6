package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryBacktestHistoryNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		_, err := m.AppendBacktest(ctx, BacktestRecord{
			RequestID: fmt.Sprintf("bt_%d", i),
			Status:    "completed",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("AppendBacktest() error = %v", err)
		}
	}

	history, err := m.BacktestHistory(ctx, 0)
	if err != nil {
		t.Fatalf("BacktestHistory() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len = %d, want 3", len(history))
	}
	if history[0].RequestID != "bt_2" {
		t.Errorf("newest first: got %s", history[0].RequestID)
	}
}

func TestMemoryBacktestHistoryLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.AppendBacktest(ctx, BacktestRecord{RequestID: fmt.Sprintf("bt_%d", i)})
	}

	history, err := m.BacktestHistory(ctx, 2)
	if err != nil {
		t.Fatalf("BacktestHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len = %d, want 2", len(history))
	}
}

func TestMemoryPortfolioRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, ok, _ := m.Portfolio(ctx, "user-1"); ok {
		t.Fatal("expected no snapshot before save")
	}

	err := m.SavePortfolio(ctx, PortfolioSnapshot{
		UserID:    "user-1",
		Positions: []byte(`[{"symbol": "AAPL", "shares": 10}]`),
	})
	if err != nil {
		t.Fatalf("SavePortfolio() error = %v", err)
	}

	snap, ok, err := m.Portfolio(ctx, "user-1")
	if err != nil || !ok {
		t.Fatalf("Portfolio() = %v, %v", ok, err)
	}
	if string(snap.Positions) != `[{"symbol": "AAPL", "shares": 10}]` {
		t.Errorf("Positions = %s", snap.Positions)
	}
	if snap.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not backfilled")
	}
}

func TestMemorySavePortfolioRequiresUserID(t *testing.T) {
	m := NewMemory()
	if err := m.SavePortfolio(context.Background(), PortfolioSnapshot{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestMemoryAssignsIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.AppendActivity(ctx, ActivityEvent{Kind: "screening", Message: "refreshed"})
	if err != nil {
		t.Fatalf("AppendActivity() error = %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated ID")
	}

	events, err := m.RecentActivity(ctx, 10)
	if err != nil {
		t.Fatalf("RecentActivity() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != id {
		t.Errorf("event not recorded with assigned ID")
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not backfilled")
	}
}
