package handlers

import (
	"net/http"

	"github.com/mkovardin/webshop/internal/handlers/middleware"
	"github.com/mkovardin/webshop/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter mounts the API. The authentication gate runs on every request
// (minus its allow-list) and only establishes identity, per-route policy
// decides who gets rejected.
func NewRouter(
	auth *AuthHandler,
	products *ProductHandler,
	gate func(next http.Handler) http.Handler,
	logging func(next http.Handler) http.Handler,
) http.Handler {
	productsHandler := products.Handler(middleware.RequireRole(models.RoleAdmin))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", auth.Handler()))
	root.Handle("/api/products/", http.StripPrefix("/api/products", productsHandler))

	// Bare collection path. StripPrefix would leave an empty path and the
	// inner mux would answer it with a redirect, so rewrite it to root.
	root.Handle("/api/products", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/"
		productsHandler.ServeHTTP(w, r2)
	}))

	return chain(root,
		logging,
		gate,
	)
}
