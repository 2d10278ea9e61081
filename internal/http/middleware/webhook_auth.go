package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// WebhookAPIKey authenticates webhook calls with a shared secret in the
// x-api-key header. A missing key is 401, a wrong key 403, matching the
// contract the conversational agent is configured against.
func WebhookAPIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "webhook auth disabled", http.StatusUnauthorized)
				return
			}
			key := strings.TrimSpace(r.Header.Get("X-Api-Key"))
			if key == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
