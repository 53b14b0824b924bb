package network

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Throttle is a token bucket shared by every request of a client.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows rps requests per second with a burst of burst requests.
// A non-positive rps disables throttling.
func NewThrottle(rps float64, burst int) *Throttle {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}

	return &Throttle{
		limiter: rate.NewLimiter(limit, max(burst, 1)),
	}
}

// Wait blocks until a request may be sent, or ctx is done.
// Exactly one token is consumed per call.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := t.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate: cannot reserve token")
	}

	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	throttleWaits.Inc()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}
