package auth

import (
	"context"
	"net/http"
)

// CookieName is the session cookie's name. The browser sends it back on
// every request to the API once login has set it.
const CookieName = "token"

// contextKey is an unexported type used for context keys in this package.
// Using a package-private type (not a plain string) means only this
// package can read or write the claims value in a request context —
// no accidental collisions with other packages.
type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth is a middleware that enforces authentication on protected
// routes. It reads the JWT from the session cookie, validates it, and
// stores the claims in the request context. A missing or invalid token
// short-circuits the request with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := extractClaims(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"not authenticated"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves the authenticated session claims set by
// RequireAuth. Returns (nil, false) on an unauthenticated request.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// extractClaims reads the session cookie and validates the token in it.
func extractClaims(r *http.Request, tokens *TokenService) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		// http.ErrNoCookie — no session at all
		return nil, err
	}
	return tokens.Validate(cookie.Value)
}
