package handlers

import (
	"net/http"

	"github.com/notekeep/apiserver/internal/auth"
	"github.com/notekeep/apiserver/internal/logging"
	"github.com/notekeep/apiserver/types"
)

// RequireAuth verifies the bearer token of every request and attaches the
// resulting principal to the request context. Failures stop the chain with
// 401; the precise cause is only logged.
func RequireAuth(authn *auth.Authenticator, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authn.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				log.Debug(r.Context(), "authentication failed", "path", r.URL.Path, "error", err)
				writeServiceError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole rejects principals that do not hold role. It must run after
// RequireAuth.
func RequireRole(role types.Role, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := auth.RequireRole(auth.PrincipalFromContext(r.Context()), role); err != nil {
				writeServiceError(w, r, log, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
