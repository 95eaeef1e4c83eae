package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth"
)

// CORS returns the CORS middleware for browser clients. The header set is
// fixed; origins are configured per deployment.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// Protect wraps a router with JWT verification when a signing key is
// configured. With an empty key the router passes through unguarded, which
// keeps local development and tests free of token plumbing.
func Protect(signingKey []byte, routes chi.Router) chi.Router {
	if len(signingKey) == 0 {
		return routes
	}
	auth := jwtauth.New("HS256", signingKey, nil)
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(auth))
	r.Use(jwtauth.Authenticator)
	r.Mount("/", routes)
	return r
}
