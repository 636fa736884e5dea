package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/viralscript/viralscript/internal/api"
)

type contextKey struct{}

// TokenValidator checks a bearer access token.
type TokenValidator interface {
	ValidateAccessToken(token string) (*AccessClaims, error)
}

// Middleware rejects requests without a valid "Authorization: Bearer" access
// token and stores the claims in the request context.
func Middleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				api.HandleError(w, api.ErrUnauthorized)
				return
			}

			claims, err := tokens.ValidateAccessToken(strings.TrimSpace(token))
			if err != nil {
				api.HandleError(w, api.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

func WithUserClaims(ctx context.Context, claims *AccessClaims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// GetUserClaims returns the claims stored by Middleware, or nil.
func GetUserClaims(ctx context.Context) *AccessClaims {
	claims, _ := ctx.Value(contextKey{}).(*AccessClaims)
	return claims
}
