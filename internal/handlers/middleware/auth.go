package middleware

import (
	"net/http"
	"strings"

	"github.com/mkovardin/webshop/internal/handlers/authctx"
	"github.com/mkovardin/webshop/internal/handlers/render"
	"github.com/mkovardin/webshop/internal/models"
)

type accessParser interface {
	// Resolve caller identity from a signed access token
	Authenticate(accessToken string) (models.Identity, error)
}

// Authenticate is the request authentication gate. It reads the bearer
// access token and, when it verifies, stores the caller identity in the
// request context.
//
// The gate fails open: a missing, malformed or expired token leaves the
// request unauthenticated and passes it on. Rejecting belongs to route
// policy (RequireAuth, RequireRole), not to identity resolution. Don't
// "fix" this into a 401 here.
//
// Requests whose path starts with one of skipPaths bypass the gate.
func Authenticate(parser accessParser, skipPaths ...string) func(http.Handler) http.Handler {
	skip := func(path string) bool {
		for _, prefix := range skipPaths {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Keep identity established earlier in the chain
			if _, ok := authctx.FromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := parser.Authenticate(token)
			if err != nil {
				// Unauthenticated stays unauthenticated
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(authctx.New(r.Context(), identity)))
		})
	}
}

// RequireAuth rejects requests that reached the handler without an
// established identity
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authctx.FromContext(r.Context()); !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose identity lacks the role claim.
// Implies RequireAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !identity.HasRole(role) {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
