// Package ratelimit gates outbound calls to market data providers.
//
// Every provider request must pass through Limiter.Acquire before it is
// issued. This is a hard invariant, not an optimization: the free tiers of
// the upstream APIs ban callers that exceed their quota.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Policy describes how calls to one provider are throttled.
// Exactly one of the two modes is active: a fixed minimum interval between
// consecutive calls, or a call-count ceiling per rolling window.
type Policy struct {
	MinInterval time.Duration // fixed-interval mode when > 0
	WindowLimit int           // sliding-window mode when > 0
	Window      time.Duration
}

// Interval returns a fixed-interval policy: at least min between calls.
func Interval(min time.Duration) Policy {
	return Policy{MinInterval: min}
}

// Window returns a sliding-window policy: at most limit calls per window.
func Window(limit int, window time.Duration) Policy {
	return Policy{WindowLimit: limit, Window: window}
}

// Budget is a snapshot of one provider's rate state. It is owned by the
// Limiter; nothing else mutates it.
type Budget struct {
	LastCall    time.Time `json:"last_call"`
	WindowStart time.Time `json:"window_start"`
	WindowCount int       `json:"window_count"`
}

// gate is the per-provider state behind Acquire.
type gate struct {
	policy   Policy
	interval *rate.Limiter // nil unless fixed-interval mode

	mu     sync.Mutex
	budget Budget
}

// Limiter owns one gate per registered provider and serializes access to
// each provider's budget, so it is safe for concurrent acquirers.
type Limiter struct {
	mu    sync.RWMutex
	gates map[string]*gate
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		gates: make(map[string]*gate),
	}
}

// Register installs the policy for a provider. Registering twice replaces
// the previous gate and resets its budget.
func (l *Limiter) Register(providerID string, p Policy) {
	g := &gate{policy: p}
	if p.MinInterval > 0 {
		// burst 1 makes the token limiter an exact minimum-gap gate
		g.interval = rate.NewLimiter(rate.Every(p.MinInterval), 1)
	}

	l.mu.Lock()
	l.gates[providerID] = g
	l.mu.Unlock()
}

// Acquire blocks until it is safe to issue one request to the provider,
// then records the call. It never fails under load; the only error paths
// are an unknown provider and context cancellation.
func (l *Limiter) Acquire(ctx context.Context, providerID string) error {
	l.mu.RLock()
	g, ok := l.gates[providerID]
	l.mu.RUnlock()
	if !ok {
		return fmt.Errorf("rate limiter: unknown provider %q", providerID)
	}

	if g.interval != nil {
		return g.acquireInterval(ctx)
	}
	return g.acquireWindow(ctx)
}

// Budget returns a snapshot of the provider's rate state.
func (l *Limiter) Budget(providerID string) (Budget, bool) {
	l.mu.RLock()
	g, ok := l.gates[providerID]
	l.mu.RUnlock()
	if !ok {
		return Budget{}, false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.budget, true
}

// acquireInterval waits out the minimum gap since the previous call.
func (g *gate) acquireInterval(ctx context.Context) error {
	if err := g.interval.Wait(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	g.budget.LastCall = time.Now()
	g.mu.Unlock()
	return nil
}

// acquireWindow admits up to WindowLimit calls per window. When the window
// has elapsed the counter resets; when the quota is spent the caller
// suspends until the window closes.
func (g *gate) acquireWindow(ctx context.Context) error {
	for {
		g.mu.Lock()
		now := time.Now()

		if g.budget.WindowStart.IsZero() || now.Sub(g.budget.WindowStart) >= g.policy.Window {
			g.budget.WindowStart = now
			g.budget.WindowCount = 0
		}

		if g.budget.WindowCount < g.policy.WindowLimit {
			g.budget.WindowCount++
			g.budget.LastCall = now
			g.mu.Unlock()
			return nil
		}

		wait := g.budget.WindowStart.Add(g.policy.Window).Sub(now)
		g.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Window rolled over; loop to reset and claim a slot
		}
	}
}
