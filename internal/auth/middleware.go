// internal/auth/middleware.go
package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName carries the session token for the HTML widget and WebSocket
// clients that cannot set headers.
const CookieName = "quiz_session"

type contextKey string

const sessionIDKey contextKey = "session_id"

// SessionMiddleware resolves the session token from the Authorization header,
// the session cookie or the token query parameter, in that order.
func SessionMiddleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := TokenFromRequest(r)
			if !ok {
				http.Error(w, "Session token required", http.StatusUnauthorized)
				return
			}

			sessionID, err := svc.ParseToken(tokenString)
			if err != nil {
				http.Error(w, "Invalid session token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

func TokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			return "", false
		}
		return bearerToken[1], true
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
