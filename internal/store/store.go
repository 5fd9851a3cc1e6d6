// Package store defines the persistence boundary for dashboard state.
// The interface keeps handlers testable; Memory is the only
// implementation shipped here, a database-backed one can slot in
// without touching callers.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BacktestRecord is one finished or failed backtest run kept for the
// dashboard history view.
type BacktestRecord struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Status      string    `json:"status"`
	TotalReturn float64   `json:"total_return"`
	SharpeRatio float64   `json:"sharpe_ratio"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityEvent is one entry of the recent activity feed.
type ActivityEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"` // screening, backtest
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PortfolioSnapshot is the saved dashboard portfolio of one user.
// Positions are kept opaque here; the dashboard owns their shape.
type PortfolioSnapshot struct {
	UserID    string          `json:"user_id"`
	Positions json.RawMessage `json:"positions"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store persists dashboard state across requests.
type Store interface {
	SavePortfolio(ctx context.Context, snap PortfolioSnapshot) error
	Portfolio(ctx context.Context, userID string) (PortfolioSnapshot, bool, error)

	AppendBacktest(ctx context.Context, rec BacktestRecord) (string, error)
	BacktestHistory(ctx context.Context, limit int) ([]BacktestRecord, error)

	AppendActivity(ctx context.Context, ev ActivityEvent) (string, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityEvent, error)
}

// Memory is an in-process Store. State is lost on restart, which is
// acceptable for the history and activity feeds.
type Memory struct {
	mu         sync.RWMutex
	portfolios map[string]PortfolioSnapshot
	backtests  []BacktestRecord
	activity   []ActivityEvent
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		portfolios: make(map[string]PortfolioSnapshot),
	}
}

// SavePortfolio stores or replaces a user's portfolio snapshot.
func (m *Memory) SavePortfolio(_ context.Context, snap PortfolioSnapshot) error {
	if snap.UserID == "" {
		return errors.New("portfolio snapshot requires a user id")
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}

	m.mu.Lock()
	m.portfolios[snap.UserID] = snap
	m.mu.Unlock()

	return nil
}

// Portfolio returns a user's snapshot and whether one exists.
func (m *Memory) Portfolio(_ context.Context, userID string) (PortfolioSnapshot, bool, error) {
	m.mu.RLock()
	snap, ok := m.portfolios[userID]
	m.mu.RUnlock()
	return snap, ok, nil
}

// AppendBacktest records a backtest run and returns its assigned ID.
func (m *Memory) AppendBacktest(_ context.Context, rec BacktestRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.backtests = append(m.backtests, rec)
	m.mu.Unlock()

	return rec.ID, nil
}

// BacktestHistory returns the most recent runs, newest first.
func (m *Memory) BacktestHistory(_ context.Context, limit int) ([]BacktestRecord, error) {
	m.mu.RLock()
	out := make([]BacktestRecord, len(m.backtests))
	copy(out, m.backtests)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppendActivity records an activity event and returns its assigned ID.
func (m *Memory) AppendActivity(_ context.Context, ev ActivityEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}

	m.mu.Lock()
	m.activity = append(m.activity, ev)
	m.mu.Unlock()

	return ev.ID, nil
}

// RecentActivity returns the most recent events, newest first.
func (m *Memory) RecentActivity(_ context.Context, limit int) ([]ActivityEvent, error) {
	m.mu.RLock()
	out := make([]ActivityEvent, len(m.activity))
	copy(out, m.activity)
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
