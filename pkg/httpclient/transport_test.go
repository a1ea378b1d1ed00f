package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagging(name string, trace *[]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			*trace = append(*trace, name)
			return next.RoundTrip(r)
		})
	}
}

func TestWrap_FirstListedOutermost(t *testing.T) {
	var trace []string
	base := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		trace = append(trace, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := Wrap(base, tagging("a", &trace), tagging("b", &trace))
	req := httptest.NewRequest(http.MethodGet, "http://store/products", nil)
	_, err := rt.RoundTrip(req)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "base"}, trace)
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	rt := Wrap(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get("X-Request-ID")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://store/products", nil)
	_, err := rt.RoundTrip(req)

	require.NoError(t, err)
	_, err = uuid.Parse(seen)
	assert.NoError(t, err)
	// The original request stays untouched.
	assert.Empty(t, req.Header.Get("X-Request-ID"))
}

func TestRequestID_KeepsValidCallerID(t *testing.T) {
	var seen string
	rt := Wrap(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get("X-Request-ID")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://store/products", nil)
	req.Header.Set("X-Request-ID", "caller-supplied-1")
	_, err := rt.RoundTrip(req)

	require.NoError(t, err)
	assert.Equal(t, "caller-supplied-1", seen)
}

func TestIsValidRequestID(t *testing.T) {
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"empty", "", false},
		{"simple", "req-42", true},
		{"uuid", uuid.New().String(), true},
		{"control char", "req\n42", false},
		{"non ascii", "req-\xC3\xA9", false},
		{"too long", string(long), false},
		{"max length", string(long[:128]), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isValidRequestID(tt.id))
		})
	}
}
