// Package api implements the Luach REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/luach/internal/apperr"
	"github.com/starford/luach/internal/auth"
)

// Identities attached by AuthMiddleware.
var (
	localIdentity  = auth.Identity{Subject: "local"}
	bearerIdentity = auth.Identity{Subject: "bearer"}
)

// AuthMiddleware returns middleware that attaches the caller identity.
// If enabled is false, every request is treated as signed in (disabled mode).
// If enabled is true, a valid "Authorization: Bearer <token>" header signs the
// request in, a wrong token is rejected and a missing header continues
// anonymously. Anonymous callers may read; RequireIdentity guards writes.
// token may be the secret itself or its argon2id hash.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	checker := auth.NewTokenChecker(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), localIdentity)))
				return
			}
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(header, "Bearer ") || !checker.Check(strings.TrimPrefix(header, "Bearer ")) {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), bearerIdentity)))
		})
	}
}

// RequireIdentity rejects requests that AuthMiddleware left anonymous.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.Authorized(r.Context()) {
			writeJSON(w, http.StatusUnauthorized, errorBody(apperr.ErrAuthRequired.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
