package httpclient

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleReserve_AllowsUpToMax(t *testing.T) {
	tr := &throttle{cfg: ThrottleConfig{Max: 2, Window: time.Second}}
	now := time.Unix(100, 0)

	_, allowed := tr.reserve(now)
	assert.True(t, allowed)
	_, allowed = tr.reserve(now)
	assert.True(t, allowed)

	resetAt, allowed := tr.reserve(now)
	assert.False(t, allowed)
	assert.Equal(t, now.Add(time.Second), resetAt)
}

func TestThrottleReserve_SlidingWindowDrainsPrevious(t *testing.T) {
	tr := &throttle{cfg: ThrottleConfig{Max: 2, Window: time.Second}}
	start := time.Unix(100, 0)

	// Fill the first window.
	for range 2 {
		_, allowed := tr.reserve(start)
		require.True(t, allowed)
	}

	// Halfway into the next window the previous one only counts for half,
	// so a request fits again.
	_, allowed := tr.reserve(start.Add(1500 * time.Millisecond))
	assert.True(t, allowed)
}

func TestThrottleReserve_StaleWindowsExpire(t *testing.T) {
	tr := &throttle{cfg: ThrottleConfig{Max: 2, Window: time.Second}}
	start := time.Unix(100, 0)

	for range 2 {
		_, allowed := tr.reserve(start)
		require.True(t, allowed)
	}

	// Two full windows later nothing carries over.
	_, allowed := tr.reserve(start.Add(2 * time.Second))
	assert.True(t, allowed)
	_, allowed = tr.reserve(start.Add(2 * time.Second))
	assert.True(t, allowed)
}

func TestThrottle_DisabledPassesThrough(t *testing.T) {
	calls := 0
	rt := Wrap(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), Throttle(ThrottleConfig{Max: 0, Window: time.Second}))

	for range 10 {
		req, err := http.NewRequest(http.MethodGet, "http://store/products", nil)
		require.NoError(t, err)
		_, err = rt.RoundTrip(req)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, calls)
}

func TestThrottle_WaitsInsteadOfFailing(t *testing.T) {
	window := 30 * time.Millisecond
	rt := Wrap(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), Throttle(ThrottleConfig{Max: 1, Window: window}))

	req, err := http.NewRequest(http.MethodGet, "http://store/products", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)

	begin := time.Now()
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	// The second request is delayed, not rejected.
	assert.GreaterOrEqual(t, time.Since(begin), window/2)
}

func TestThrottle_HonorsContextCancellation(t *testing.T) {
	rt := Wrap(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), Throttle(ThrottleConfig{Max: 1, Window: time.Minute}))

	req, err := http.NewRequest(http.MethodGet, "http://store/products", nil)
	require.NoError(t, err)
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	blocked, err := http.NewRequest(http.MethodGet, "http://store/products", nil)
	require.NoError(t, err)

	_, err = rt.RoundTrip(blocked.WithContext(ctx))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
