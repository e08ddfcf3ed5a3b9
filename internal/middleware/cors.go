package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// CORS answers preflight requests and stamps the usual cross-origin headers.
// An allowed-origins list containing "*" accepts any origin.
func CORS(allowedOrigins []string) mux.MiddlewareFunc {
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}

	originAllowed := func(origin string) bool {
		if allowAll {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == origin || strings.HasSuffix(origin, allowed) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
				w.Header().Set("Access-Control-Expose-Headers", "X-Trace-ID")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
