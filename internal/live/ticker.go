// ABOUTME: Cooperative fixed-rate tick source with explicit cancellation
// ABOUTME: The context is checked before every tick, never mid-tick
package live

import (
	"context"
	"time"
)

// Ticker invokes a closure at a fixed nominal rate
type Ticker struct {
	Interval time.Duration
}

// NewTicker creates a ticker running at rate ticks per second
func NewTicker(rate int) *Ticker {
	if rate <= 0 {
		rate = 1
	}
	return &Ticker{Interval: time.Second / time.Duration(rate)}
}

// Run calls tick with n = 0, 1, 2, ... until ctx is done or tick returns
// false. Returns ctx.Err() on cancellation and nil when tick stops the loop.
// Late ticks are dropped rather than queued.
func (t *Ticker) Run(ctx context.Context, tick func(n int64) bool) error {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !tick(n) {
			return nil
		}
		n++

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
