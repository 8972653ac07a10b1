// Package backoff retries fallible operations with capped exponential delays
// bounded by a total sleep budget
package backoff

import (
	"context"
	"errors"
	"time"
)

// Defaults applied by Policy.withDefaults when fields are zero
const (
	DefaultStart   = 100 * time.Millisecond
	DefaultFactor  = 2.0
	DefaultCeiling = 10 * time.Second
	DefaultBudget  = 30 * time.Second
)

// Policy describes one retry schedule
//
// the first delay is Start, each subsequent delay is the previous one
// multiplied by Factor and clamped to Ceiling, and the sum of all delays
// never exceeds Budget. once the budget is spent the last error is returned
type Policy struct {
	Start   time.Duration
	Factor  float64
	Ceiling time.Duration
	Budget  time.Duration

	// Retryable reports whether an error deserves another attempt
	// nil retries everything except context cancellation
	Retryable func(error) bool

	// OnRetry observes each scheduled retry before its delay elapses
	OnRetry func(attempt int, delay time.Duration, err error)
}

// sleep is swappable in tests
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p Policy) withDefaults() Policy {
	if p.Start <= 0 {
		p.Start = DefaultStart
	}
	if p.Factor <= 1 {
		p.Factor = DefaultFactor
	}
	if p.Ceiling <= 0 {
		p.Ceiling = DefaultCeiling
	}
	if p.Budget <= 0 {
		p.Budget = DefaultBudget
	}
	return p
}

func (p Policy) retryable(err error) bool {
	if err == nil {
		return false
	}
	// a custom classifier owns the decision entirely, including ctx errors
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Do runs op until it succeeds, the error is not retryable, the context is
// cancelled, or the sleep budget is exhausted
//
// every call runs a fresh schedule; attempt state never leaks between calls
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	p = p.withDefaults()

	d := p.Start
	var slept time.Duration
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !p.retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		remaining := p.Budget - slept
		if remaining <= 0 {
			return err
		}
		if d > remaining {
			d = remaining
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, d, err)
		}
		if serr := sleep(ctx, d); serr != nil {
			return serr
		}
		slept += d

		d = time.Duration(float64(d) * p.Factor)
		if d > p.Ceiling {
			d = p.Ceiling
		}
	}
}
