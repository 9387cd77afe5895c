package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// Context keys
type contextKey string

const userClaimsKey contextKey = "user_claims"

// withUserClaims adds user claims to the context
func withUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// WithUserClaims is the exported version for testing purposes
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return withUserClaims(ctx, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}

// RequireAuth extracts user claims from context or returns false after writing
// a 401 response. Handlers call it as their first statement.
func RequireAuth(w http.ResponseWriter, r *http.Request) (*UserClaims, bool) {
	claims, ok := GetUserClaims(r.Context())
	if !ok {
		writeUnauthenticated(w, "user not authenticated")
		return nil, false
	}
	return claims, true
}

// Middleware verifies Firebase bearer tokens and places the resulting claims
// in the request context. Public endpoints are passed through untouched.
func Middleware(firebaseAuth *FirebaseAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthenticated(w, "authorization header is required")
				return
			}

			token, err := ExtractTokenFromHeader(authHeader)
			if err != nil {
				writeUnauthenticated(w, err.Error())
				return
			}

			claims, err := firebaseAuth.VerifyToken(r.Context(), token)
			if err != nil {
				writeUnauthenticated(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware installs a mock identity so the service can run without
// Firebase during local development. An X-Debug-Impersonate-User header
// switches the identity.
// ONLY use this in development - never in production!
func LocalDevMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := r.Header.Get("X-Debug-Impersonate-User")
			if uid == "" {
				uid = "local-dev-user"
			}
			claims := &UserClaims{
				UID:   uid,
				Email: uid + "@debug.local",
			}
			next.ServeHTTP(w, r.WithContext(withUserClaims(r.Context(), claims)))
		})
	}
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication
func isPublicEndpoint(path string) bool {
	publicEndpoints := []string{
		"/health",
		"/ping",
	}

	for _, endpoint := range publicEndpoints {
		if path == endpoint {
			return true
		}
	}

	return false
}

func writeUnauthenticated(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
