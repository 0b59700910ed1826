package providers

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// availabilityTTL is how long a probe result is trusted before re-checking.
const availabilityTTL = 30 * time.Second

// availability caches the result of an adapter's availability probe and rate
// limits how often the probe may run, so IsAvailable stays cheap on the
// orchestrator's hot path.
type availability struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	result  bool
	checked time.Time
}

// newAvailability creates a probe cache allowing one probe per minInterval.
func newAvailability(minInterval time.Duration) *availability {
	if minInterval <= 0 {
		minInterval = time.Second
	}
	return &availability{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// check returns the cached probe result when fresh; otherwise it runs probe
// if the rate limiter permits, falling back to the stale result when it does
// not.
func (a *availability) check(ctx context.Context, probe func(context.Context) bool) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.checked.IsZero() && time.Since(a.checked) < availabilityTTL {
		return a.result
	}
	if !a.limiter.Allow() {
		return a.result
	}

	a.result = probe(ctx)
	a.checked = time.Now()
	return a.result
}

// invalidate drops the cached result so the next check re-probes. Called
// after a completion failure so a broken backend is noticed promptly.
func (a *availability) invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checked = time.Time{}
}
