package middleware

import (
	"context"
	"net/http"
	"strings"

	"app/internal/util"
)

// contextKey is private to avoid collisions with other context values.
type contextKey string

// UserContextKey holds the identity provider's subject id for the request.
const UserContextKey = contextKey("user")

// ClaimsContextKey holds the full session claims for handlers that need the
// profile attributes.
const ClaimsContextKey = contextKey("claims")

// AuthMiddleware verifies the Bearer session token and stores the subject
// id and claims in the request context. A missing or invalid token is
// unauthenticated and never reaches the handler.
func AuthMiddleware(jwtKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header missing", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := util.ValidateJWT(parts[1], jwtKey)
			if err != nil {
				http.Error(w, "Invalid token: "+err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims.Subject)
			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
