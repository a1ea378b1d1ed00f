package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// ThrottleConfig configures the client-side sliding window throttle.
type ThrottleConfig struct {
	// Max is the maximum number of requests allowed per window.
	// Zero or negative disables throttling.
	Max int
	// Window is the duration of each sliding window.
	Window time.Duration
}

// throttle tracks request counts across two adjacent windows for the
// sliding window estimate. Unlike a server-side limiter there is a single
// key: all requests go to the one store host.
type throttle struct {
	cfg ThrottleConfig

	mu        sync.Mutex
	prevCount float64
	prevStart time.Time
	currCount float64
	currStart time.Time
}

// reserve checks whether a request may proceed at now. When the limit is
// reached it returns allowed=false and the time at which the current
// window resets.
func (t *throttle) reserve(now time.Time) (resetAt time.Time, allowed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.currStart.IsZero() {
		t.currStart = now
	}

	// Rotate window if the current window has elapsed.
	if now.Sub(t.currStart) >= t.cfg.Window {
		t.prevCount = t.currCount
		t.prevStart = t.currStart
		t.currCount = 0
		t.currStart = now.Truncate(t.cfg.Window)
		if now.Sub(t.prevStart) >= 2*t.cfg.Window {
			t.prevCount = 0
		}
	}

	// Sliding window: weight the previous window by how much of it
	// overlaps the current sliding window.
	elapsed := now.Sub(t.currStart)
	overlapRatio := 1.0 - elapsed.Seconds()/t.cfg.Window.Seconds()
	if overlapRatio < 0 {
		overlapRatio = 0
	}
	effectiveCount := t.prevCount*overlapRatio + t.currCount
	resetAt = t.currStart.Add(t.cfg.Window)

	if effectiveCount >= float64(t.cfg.Max) {
		return resetAt, false
	}

	t.currCount++
	return resetAt, true
}

// Throttle returns a middleware that self-limits outgoing requests to at
// most Max per Window. Instead of failing a request over the limit, it
// waits for the window to reset (or the request context to end) and tries
// again: the store never sees the burst.
func Throttle(cfg ThrottleConfig) Middleware {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return func(next http.RoundTripper) http.RoundTripper { return next }
	}

	t := &throttle{cfg: cfg}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			for {
				resetAt, allowed := t.reserve(time.Now())
				if allowed {
					return next.RoundTrip(r)
				}

				wait := time.Until(resetAt)
				if wait <= 0 {
					continue
				}
				timer := time.NewTimer(wait)
				select {
				case <-r.Context().Done():
					timer.Stop()
					return nil, r.Context().Err()
				case <-timer.C:
				}
			}
		})
	}
}
