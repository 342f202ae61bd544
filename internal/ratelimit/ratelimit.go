// Package ratelimit enforces the per-retailer inter-request delay discipline.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter blocks until the next request is allowed to go out.
type Limiter interface {
	Wait(ctx context.Context) error
}

// JitterLimiter spaces successive calls by a randomized delay drawn from
// [minDelay, maxDelay). One instance guards one retailer's request stream;
// it must never be shared across retailers.
type JitterLimiter struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewJitterLimiter(minDelay, maxDelay time.Duration) *JitterLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &JitterLimiter{
		minDelay: minDelay,
		maxDelay: maxDelay,
	}
}

// Wait sleeps out the remainder of the randomized delay since the previous
// call, returning early only if ctx is cancelled.
func (l *JitterLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastAction)
	delay := l.nextDelay()

	if elapsed < delay {
		timer := time.NewTimer(delay - elapsed)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.lastAction = time.Now()
	return nil
}

func (l *JitterLimiter) nextDelay() time.Duration {
	if l.maxDelay == l.minDelay {
		return l.minDelay
	}
	jitter := time.Duration(rand.Int63n(int64(l.maxDelay - l.minDelay)))
	return l.minDelay + jitter
}
