package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type identityKey struct{}

// RequireIdentity resolves the caller from the verified token and stores it in the request context.
// Callers without a company cannot use the attendance endpoints.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, user.ErrInvalidClaims)
			return
		}

		identity, err := jwt.IdentityFromClaims(claims)
		if err != nil {
			response.HandleError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the caller stored by RequireIdentity.
func IdentityFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(user.Identity)
	return identity, ok
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity user.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}
