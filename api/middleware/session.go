package middleware

import (
	"context"
	"net/http"

	"github.com/pawmart/storefront-backend/internal/auth"
	"github.com/pawmart/storefront-backend/pkg/logger"
)

type contextKey string

const (
	ctxIdentity contextKey = "identity"
	ctxToken    contextKey = "session_token"
)

// IdentityFromContext returns the verified identity, or false for guests.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	if ctx == nil {
		return auth.Identity{}, false
	}
	if v, ok := ctx.Value(ctxIdentity).(auth.Identity); ok {
		return v, true
	}
	return auth.Identity{}, false
}

// TokenFromContext returns the raw session cookie value, empty for guests.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxToken).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects a verified identity; used by handlers and tests.
func WithIdentity(ctx context.Context, identity auth.Identity, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxIdentity, identity)
	return context.WithValue(ctx, ctxToken, token)
}

// Session resolves the session cookie into an identity. Verification
// failures downgrade the request to guest instead of rejecting it; routes
// that require authentication enforce that themselves.
func Session(verifier *auth.Verifier, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.Verify(cookie.Value)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "session.invalid_cookie")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), identity, cookie.Value)
			if logg != nil {
				ctx = logg.WithScope(ctx, identity.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
