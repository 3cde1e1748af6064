package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bryanwahyu/aio-strategy/internal/domain/analysis"
)

type contextKey string

const CallerKey contextKey = "caller"

// Authenticator resolves a bearer token to a caller.
type Authenticator interface {
	Authenticate(ctx context.Context, bearerToken string) (*analysis.Caller, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// Any other shape yields "".
func BearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[7:])
}

// RequireCaller authenticates the request and stores the caller in its context.
// Rejections are written by deny.
func RequireCaller(auth Authenticator, deny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := auth.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				deny(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), CallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the caller set by RequireCaller, or nil.
func CallerFromContext(ctx context.Context) *analysis.Caller {
	if c, ok := ctx.Value(CallerKey).(*analysis.Caller); ok {
		return c
	}
	return nil
}
