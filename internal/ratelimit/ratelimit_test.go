package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fixedClock lets tests step time manually.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time { return c.t }

func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBudget(limit int) (*Budget, *fixedClock) {
	clock := &fixedClock{t: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	b := NewBudget(limit)
	b.now = clock.now
	return b, clock
}

func TestMonthlyExhaustion(t *testing.T) {
	b, _ := newTestBudget(3)

	for i := 0; i < 3; i++ {
		if err := b.Check(); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}

	err := b.Check()
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("want ErrBudgetExhausted, got %v", err)
	}

	// Counter must not grow past the limit once exhausted.
	_, perMonth, _ := b.Snapshot()
	if perMonth != 3 {
		t.Errorf("perMonth = %d, want 3", perMonth)
	}
}

func TestSecondWindowReset(t *testing.T) {
	b, clock := newTestBudget(100)

	for i := 0; i < 4; i++ {
		if err := b.Check(); err != nil {
			t.Fatal(err)
		}
	}
	perSecond, _, _ := b.Snapshot()
	if perSecond != 4 {
		t.Fatalf("perSecond = %d, want 4", perSecond)
	}

	clock.advance(1100 * time.Millisecond)
	if err := b.Check(); err != nil {
		t.Fatal(err)
	}

	perSecond, perMonth, _ := b.Snapshot()
	if perSecond != 1 {
		t.Errorf("perSecond after window = %d, want 1", perSecond)
	}
	if perMonth != 5 {
		t.Errorf("perMonth = %d, want 5 (monthly counter keeps accumulating)", perMonth)
	}
}

func TestSecondResetIndependentOfMonthlyState(t *testing.T) {
	b, clock := newTestBudget(2)

	b.Check()
	b.Check()
	if err := b.Check(); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("want ErrBudgetExhausted, got %v", err)
	}

	// The second window still resets while the monthly budget is spent.
	clock.advance(1100 * time.Millisecond)
	if err := b.Check(); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("want ErrBudgetExhausted, got %v", err)
	}
	perSecond, _, _ := b.Snapshot()
	if perSecond != 0 {
		t.Errorf("perSecond = %d, want 0 after window reset", perSecond)
	}
}

func TestCalendarMonthRollover(t *testing.T) {
	b, clock := newTestBudget(2)

	b.Check()
	b.Check()
	if err := b.Check(); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatal("expected exhaustion before rollover")
	}

	clock.advance(31 * 24 * time.Hour)
	if err := b.Check(); err != nil {
		t.Fatalf("after month rollover: %v", err)
	}
	_, perMonth, _ := b.Snapshot()
	if perMonth != 1 {
		t.Errorf("perMonth = %d, want 1 after rollover", perMonth)
	}
}

func TestDefaultBudget(t *testing.T) {
	b := NewBudget(0)
	_, _, limit := b.Snapshot()
	if limit != DefaultMonthlyBudget {
		t.Errorf("limit = %d, want %d", limit, DefaultMonthlyBudget)
	}
}

func TestPacerSpacesCalls(t *testing.T) {
	p := NewPacer(50 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("three paced calls took %v, want >= 150ms", elapsed)
	}
}

func TestPacerFirstWaitIsPaced(t *testing.T) {
	p := NewPacer(60 * time.Millisecond)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("first paced call took %v, want >= 50ms", elapsed)
	}
}

func TestPacerHonorsContext(t *testing.T) {
	p := NewPacer(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("expected context error for a wait longer than the deadline")
	}
}
