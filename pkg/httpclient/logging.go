package httpclient

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// LogRequests returns a middleware that logs every outgoing request with
// the logger carried in the request context (zctx). Successful round trips
// log at debug, non-2xx at warn, transport failures at error.
func LogRequests() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			lg := zctx.From(r.Context())
			start := time.Now()

			resp, err := next.RoundTrip(r)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("url", r.URL.String()),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				lg.Error("Request failed", append(fields, zap.Error(err))...)
				return nil, err
			}

			fields = append(fields, zap.Int("status", resp.StatusCode))
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				lg.Debug("Request", fields...)
			} else {
				lg.Warn("Request", fields...)
			}
			return resp, nil
		})
	}
}
