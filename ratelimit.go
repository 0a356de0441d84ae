package fasttranslator

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum spacing between outbound provider calls. The
// gate is global: every worker reserves its slot from the same schedule,
// so two calls are never closer together than the configured interval,
// regardless of which keys they serve.
type Pacer struct {
	interval time.Duration
	clock    Clock

	mu   sync.Mutex
	next time.Time // Earliest moment the next call may go out
}

// NewPacer creates a pacing gate with the given minimum inter-call
// interval. A zero or negative interval disables pacing.
func NewPacer(interval time.Duration, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock
	}
	return &Pacer{
		interval: interval,
		clock:    clock,
	}
}

// Wait blocks until this caller's reserved slot arrives or ctx is
// cancelled. Slots are reserved under the lock, so concurrent waiters line
// up rather than racing for the same opening; the sleep itself happens
// outside the lock.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := p.clock.Now()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(wait):
		return nil
	}
}

// Interval returns the configured minimum spacing.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}
