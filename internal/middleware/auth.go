package middleware

import (
	"net/http"

	"github.com/okoval/giftbox/internal/ctxkeys"
	"github.com/okoval/giftbox/internal/service"
)

// AuthMiddleware checks for the JWT cookie and adds the user to the
// request context when valid. Requests without (or with invalid) tokens
// continue as unauthenticated viewers.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				// No cookie, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.VerifyJWT(cookie.Value)
			if err != nil {
				// Invalid token, clear cookie and continue
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserByID(userID)
			if err != nil {
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Never expose the hash downstream.
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the viewer is authenticated.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.IsAuthenticated(r.Context()) {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}
