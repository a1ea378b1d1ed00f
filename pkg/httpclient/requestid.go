package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns a middleware that stamps every outgoing request with an
// X-Request-ID header. A caller-supplied value is kept if valid: at most
// 128 bytes and only printable ASCII (0x20-0x7E). Otherwise a new UUID v4
// is generated. The request is cloned before the header is set, so shared
// requests are not mutated.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			id := r.Header.Get("X-Request-ID")
			if !isValidRequestID(id) {
				id = uuid.New().String()
			}

			r = r.Clone(r.Context())
			r.Header.Set("X-Request-ID", id)
			return next.RoundTrip(r)
		})
	}
}

// isValidRequestID checks that id is non-empty, at most 128 bytes, and
// contains only printable ASCII (0x20-0x7E).
func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}
