// Package ratelimit guards a paid remote-search API with fixed call budgets:
// a calendar-month ceiling that blocks once exhausted, and a per-second
// counter that is tracked for observability but does not block on its own.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrBudgetExhausted is returned once the monthly call budget is spent.
var ErrBudgetExhausted = errors.New("rate limit exceeded")

const (
	// DefaultMonthlyBudget matches the free tier of the search API.
	DefaultMonthlyBudget = 15000

	// secondWindow is how long the per-second counter accumulates before
	// reset.
	secondWindow = time.Second
)

// Budget tracks per-second and per-month call counts. Safe for concurrent
// use; MCP hosts may dispatch tool calls in parallel.
type Budget struct {
	mu sync.Mutex

	monthlyLimit int

	perSecond   int
	windowStart time.Time

	perMonth   int
	monthStart time.Time

	now func() time.Time
}

// NewBudget creates a budget with the given monthly ceiling. A non-positive
// limit falls back to DefaultMonthlyBudget.
func NewBudget(monthlyLimit int) *Budget {
	if monthlyLimit <= 0 {
		monthlyLimit = DefaultMonthlyBudget
	}
	return &Budget{
		monthlyLimit: monthlyLimit,
		now:          time.Now,
	}
}

// Check consumes one call from the budget, or fails with ErrBudgetExhausted
// if the monthly ceiling is already reached. The per-second counter resets
// whenever more than a second has passed since its window opened; the
// monthly counter resets when the calendar month changes.
func (b *Budget) Check() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if now.Sub(b.windowStart) > secondWindow {
		b.perSecond = 0
		b.windowStart = now
	}

	if !b.monthStart.IsZero() && !sameMonth(b.monthStart, now) {
		b.perMonth = 0
		b.monthStart = now
	}
	if b.monthStart.IsZero() {
		b.monthStart = now
	}

	if b.perMonth >= b.monthlyLimit {
		return fmt.Errorf("%w: monthly budget of %d calls spent", ErrBudgetExhausted, b.monthlyLimit)
	}

	b.perSecond++
	b.perMonth++
	if b.perSecond > 1 {
		// Informational only; pacing between remote calls is the Pacer's job.
		log.Debug().Int("per_second", b.perSecond).Msg("search call rate above one per second")
	}
	return nil
}

// Snapshot reports current counter values for the status tool.
func (b *Budget) Snapshot() (perSecond, perMonth, monthlyLimit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.perSecond, b.perMonth, b.monthlyLimit
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
