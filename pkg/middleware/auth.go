package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shubhamchoudhary-2003/fullstack/pkg/logger"
)

type principalKey struct{}

// Claims is the identity carried by a valid bearer token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenValidator checks a raw bearer token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth rejects requests without a valid "Authorization: Bearer" token and
// stores the claims in the request context.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			switch {
			case scheme == "":
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			case !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "":
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := validate(strings.TrimSpace(token))
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, *claims)
			ctx = logger.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole answers 403 unless the authenticated principal has one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			if _, ok := allowed[p.Role]; !ok {
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext returns the claims stored by Auth.
func PrincipalFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(principalKey{}).(Claims)
	return c, ok
}
