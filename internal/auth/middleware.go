package auth

import (
	"context"
	"net/http"

	"github.com/getsentry/sentry-go"
)

type contextKey int

const identityKey contextKey = iota

// IdentityFrom returns the identity a SessionMiddleware upstream
// resolved for this request.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// RequestWithIdentity returns a copy of the request carrying the given
// identity, the same way SessionMiddleware attaches one.
func RequestWithIdentity(r *http.Request, identity *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, identity))
}

// SessionMiddleware resolves the Authorization bearer token to an
// identity and stores it in the request context. Requests without a
// valid session never reach the wrapped handler.
func SessionMiddleware(service *Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := service.Resolve(r.Context(), token)
		if err != nil {
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "failed to resolve session")
			return
		}
		if identity == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

// RequirePermission guards a route with the RBAC policy for one
// (domain, action) pair. It expects SessionMiddleware upstream.
func RequirePermission(domain Domain, action Action, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing session")
			return
		}
		if !CheckPermission(identity.Role, domain, action) {
			writeError(w, http.StatusForbidden, "permission denied")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restricts a route to the full admin role. The user
// administration surface is not a domain, so the RBAC matrix does not
// apply; only RoleAdmin passes.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing session")
			return
		}
		if identity.Role != RoleAdmin {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
