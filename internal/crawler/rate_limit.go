package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// linkLimiter paces the per-link fetches of one session. A nil limiter
// lets every request through.
type linkLimiter struct {
	limiter *rate.Limiter
}

// newLinkLimiter allows requestsPerMinute fetches with up to burst at once.
func newLinkLimiter(requestsPerMinute, burst int) *linkLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	every := rate.Every(time.Minute / time.Duration(requestsPerMinute))
	return &linkLimiter{limiter: rate.NewLimiter(every, burst)}
}

// wait blocks until a fetch may start. It reports false once ctx is done or
// the next slot lies beyond ctx's deadline.
func (l *linkLimiter) wait(ctx context.Context) bool {
	if l == nil {
		return ctx.Err() == nil
	}
	return l.limiter.Wait(ctx) == nil
}
