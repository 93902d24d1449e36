package auth

import (
	"context"

	"github.com/formpost/formpost/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const claimsContextKey contextKey = "token_claims"

// ContextWithClaims adds verified token claims to the context.
func ContextWithClaims(ctx context.Context, claims *model.TokenClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext retrieves token claims from the context.
// Returns nil if not present.
func ClaimsFromContext(ctx context.Context) *model.TokenClaims {
	claims, ok := ctx.Value(claimsContextKey).(*model.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// SiteKeyFromContext returns the site key claim, or "" when unauthenticated.
func SiteKeyFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.SiteKey
}
