package middleware

import (
	"context"
	"net/http"
	"strings"

	"kobo-inventory/internal/auth"
	"kobo-inventory/internal/model"

	"github.com/rs/zerolog"
)

// TokenHeader is the header the web client sends its session token in.
const TokenHeader = "x-auth-token"

// TokenParser verifies session tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid session token and stores its claims
// in the request context. Tokens are read from x-auth-token, then from an
// Authorization bearer header.
func Auth(parser TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFrom(r)
			if token == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("missing token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Access Denied!. No token provided")
				return
			}

			claims, err := parser.Parse(token)
			if err != nil {
				logger.Warn().Str("path", r.URL.Path).Str("remote_addr", r.RemoteAddr).Msg("invalid token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeInvalidToken, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(TokenHeader)); token != "" {
		return token
	}
	const prefix = "bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom returns the claims stored by Auth.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}
