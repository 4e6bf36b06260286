package middleware

import (
	"net/http"
	"strings"

	"educate/internal/contextutils"
	"educate/internal/response"
	"educate/internal/services"
)

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireAuth rejects requests without a valid access token and puts the
// authenticated user on the context.
func RequireAuth(auth services.AuthService, builder *response.Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				builder.WriteError(w, r, services.NewUnauthorizedError("Authentication required"))
				return
			}

			user, err := auth.ValidateToken(r.Context(), token)
			if err != nil {
				builder.WriteError(w, r, err)
				return
			}

			ctx := contextutils.WithUser(r.Context(), user)
			ctx = contextutils.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present but lets
// anonymous requests through. Listings use it to overlay viewer state.
func OptionalAuth(auth services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if user, err := auth.ValidateToken(r.Context(), token); err == nil {
					ctx := contextutils.WithUser(r.Context(), user)
					ctx = contextutils.WithUserID(ctx, user.ID)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
