package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/httprate"

	"github.com/webfusionlab/webfusion/internal/ratelimit"
)

// RateLimit returns an HTTP middleware that enforces the named zone of
// limiter per client IP. Counting is delegated to the zone's fixed-window
// counter, so the middleware and Limiter.Admit share state; the counter
// strips the trailing separator httprate adds to composed keys.
//
// The client IP is taken from r.RemoteAddr; mount chi's RealIP first when
// running behind a proxy.
func RateLimit(limiter *ratelimit.Limiter, zone string) func(http.Handler) http.Handler {
	z, ok := limiter.Zone(zone)
	if !ok {
		panic("middleware: unknown rate limit zone " + zone)
	}
	counter := limiter.Counter(zone)

	return httprate.Limit(
		z.Limit,
		z.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitCounter(counter),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if key, err := httprate.KeyByIP(r); err == nil {
				secs := int(math.Ceil(counter.RetryAfter(key).Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
			}
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"success": false,
				"error":   z.Message,
			})
		}),
	)
}
