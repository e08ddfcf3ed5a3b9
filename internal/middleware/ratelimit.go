package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/autozen/api-gateway/internal/errors"
	"github.com/autozen/api-gateway/internal/logging"
)

// RateLimiter keeps a token bucket per client. Authenticated requests are
// keyed by user id, anonymous ones by remote address.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   *logging.Logger
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained with
// the given burst per client.
func NewRateLimiter(requestsPerSecond, burst int, logger *logging.Logger) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
		logger:   logger,
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Bounded map: drop everything when it grows past the cap rather than
	// tracking per-entry last use.
	if len(rl.limiters) > 10000 {
		rl.limiters = make(map[string]*rate.Limiter)
	}

	limiter, ok := rl.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Handler rejects over-budget clients with 429 before the request reaches
// any handler.
func (rl *RateLimiter) Handler() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := logging.GetUserID(r.Context())
			if key == "" {
				if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
					key = host
				} else {
					key = r.RemoteAddr
				}
			}

			if !rl.limiterFor(key).Allow() {
				rl.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", map[string]interface{}{
					"key":    key,
					"path":   r.URL.Path,
					"method": r.Method,
				})

				serviceErr := errors.RateLimitExceeded(int(rl.limit), "1s")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(serviceErr.HTTPStatus)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"message": serviceErr.Message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
