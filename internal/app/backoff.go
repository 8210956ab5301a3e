package app

import (
	"context"
	"math/rand"
	"time"
)

// Accept retry bounds, matching what net/http uses for temporary accept errors.
const (
	acceptBackoffInitial = 5 * time.Millisecond
	acceptBackoffMax     = time.Second
)

// backoff implements exponential backoff with jitter.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Wait sleeps for the current duration (±20% jitter) and doubles it.
// It returns false if ctx is done first.
func (b *backoff) Wait(ctx context.Context) bool {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	t := time.NewTimer(time.Duration(float64(b.current) + jitter))
	defer t.Stop()

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Reset resets the backoff to the initial duration.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the duration the next Wait will use, before jitter.
func (b *backoff) Current() time.Duration {
	return b.current
}
