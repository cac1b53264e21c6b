package auth

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/freeslots/libs/httpx"
)

const (
	HeaderUserID     = "X-User-Id"
	HeaderBusinessID = "X-Business-Id"
	HeaderRole       = "X-Role"
)

// RequireBearer verifies the Authorization bearer token and forwards the caller
// identity as X-User-Id, X-Business-Id and X-Role. Client supplied identity headers
// are always stripped first. The verified subject is also stored as the request
// principal so downstream rate limiting keys on it.
func RequireBearer(next http.Handler, v *Verifier, onError func(w http.ResponseWriter, status int, message string)) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, status int, message string) {
			http.Error(w, message, status)
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(HeaderUserID)
		r.Header.Del(HeaderBusinessID)
		r.Header.Del(HeaderRole)

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(strings.TrimSpace(authHeader)) <= len("Bearer ") {
			onError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		claims, err := v.Verify(r.Context(), token)
		if err != nil {
			onError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		r.Header.Set(HeaderUserID, claims.Subject)
		if claims.BusinessID != "" {
			r.Header.Set(HeaderBusinessID, claims.BusinessID)
		}
		if claims.Role != "" {
			r.Header.Set(HeaderRole, claims.Role)
		}
		next.ServeHTTP(w, r.WithContext(httpx.ContextWithPrincipal(r.Context(), claims.Subject)))
	})
}
