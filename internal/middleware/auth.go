package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/usermanager-be/internal/auth"
	"github.com/hongminglow/usermanager-be/internal/http/respond"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (auth.Claims, error)
}

// Guard wraps a handler with an access check.
type Guard func(http.Handler) http.Handler

// Open is a Guard that lets every request through.
func Open(next http.Handler) http.Handler { return next }

// RequireBearer rejects requests without a valid "Authorization: Bearer" token
// and stores the verified claims in the request context. The token subject
// must be a positive user id.
func RequireBearer(tokens TokenParser, log *slog.Logger) Guard {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				w.Header().Set("WWW-Authenticate", `Bearer`)
				respond.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err == nil {
				err = checkSubject(claims)
			}
			if err != nil {
				log.InfoContext(r.Context(), "rejected bearer token", "error", err, "request_id", RequestIDFrom(r.Context()))
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// ClaimsFrom returns the claims stored by RequireBearer.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

func checkSubject(claims auth.Claims) error {
	id, err := claims.UserID()
	if err != nil {
		return fmt.Errorf("subject %q: %w", claims.Subject, err)
	}
	if id <= 0 {
		return fmt.Errorf("subject %d is not a user id", id)
	}
	return nil
}

// CallerID returns the user id of the authenticated caller, or 0 when the
// request passed through an Open guard.
func CallerID(ctx context.Context) int64 {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return 0
	}
	id, _ := claims.UserID()
	return id
}
