package network

import (
	"context"
	"sync"
	"time"
)

// rateLimiter is a token bucket refilled by a ticker.
// A nil limiter never blocks.
type rateLimiter struct {
	tokens   chan struct{}
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func newRateLimiter(ratePerSec, burst int) *rateLimiter {
	if ratePerSec <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := &rateLimiter{
		tokens: make(chan struct{}, burst),
		done:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		limiter.tokens <- struct{}{}
	}

	interval := time.Second / time.Duration(ratePerSec)
	if interval <= 0 {
		interval = time.Second
	}
	limiter.ticker = time.NewTicker(interval)
	go limiter.refill()

	return limiter
}

func (l *rateLimiter) refill() {
	defer l.ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-l.ticker.C:
			select {
			case l.tokens <- struct{}{}:
			default:
			}
		}
	}
}

func (l *rateLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.tokens:
		return nil
	}
}

// Stop ends the refill goroutine. Tokens already in the bucket stay usable.
func (l *rateLimiter) Stop() {
	if l == nil {
		return
	}
	l.stopOnce.Do(func() { close(l.done) })
}
