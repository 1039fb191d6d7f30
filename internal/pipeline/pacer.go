package pipeline

import (
	"context"
	"sync"
	"time"
)

// DefaultPacingInterval is used when no positive interval is configured.
const DefaultPacingInterval = time.Second

// Pacer enforces a minimum gap between consecutive translation calls.
type Pacer interface {
	// Wait blocks until the next call may start. It returns ctx.Err() if ctx ends first.
	Wait(ctx context.Context) error
	// Done records that a call has just finished, successfully or not.
	Done()
}

// IntervalPacer waits a fixed interval measured from the end of the previous call.
type IntervalPacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewIntervalPacer creates a pacer. The gap cannot be switched off: a
// non-positive interval falls back to DefaultPacingInterval.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	if interval <= 0 {
		interval = DefaultPacingInterval
	}
	return &IntervalPacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Interval returns the configured gap.
func (p *IntervalPacer) Interval() time.Duration { return p.interval }

func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()

	if last.IsZero() {
		return ctx.Err()
	}
	remaining := p.interval - p.now().Sub(last)
	if remaining <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, remaining)
}

func (p *IntervalPacer) Done() {
	p.mu.Lock()
	p.last = p.now()
	p.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
