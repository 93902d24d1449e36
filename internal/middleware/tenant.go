package middleware

import (
	"net/http"

	"github.com/formpost/formpost/internal/auth"
)

// SiteKeyParam is the query parameter naming the tenant of a request.
const SiteKeyParam = "siteKey"

// RequireSiteKey returns middleware that restricts a request to the tenant
// the token was issued for. Must be applied after Auth middleware.
//
// A missing siteKey query parameter is rejected with 400, and a site key
// other than the token's with 403.
func RequireSiteKey() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "No token provided")
				return
			}

			siteKey := r.URL.Query().Get(SiteKeyParam)
			if siteKey == "" {
				writeError(w, http.StatusBadRequest, CodeValidation, "siteKey is required")
				return
			}

			if claims.SiteKey != siteKey {
				writeError(w, http.StatusForbidden, CodeForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
