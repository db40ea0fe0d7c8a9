package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JakitaK/dataset-webapi-group2/pkg/handlers"
)

// APIKey returns middleware that requires the X-API-Key header to match
// the configured key. An empty configured key disables the check
// (local development). Failures answer with the standard error envelope.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				_ = handlers.WriteError(w, http.StatusUnauthorized, "Invalid or missing API key", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
