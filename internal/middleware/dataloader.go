package middleware

import (
	"context"
	"net/http"

	"github.com/rgillard/planlog/internal/profileloader"
	"github.com/rgillard/planlog/internal/repository"
)

type ctxKey string

const profileLoaderKey ctxKey = "profileLoader"

// DataLoaderMiddleware attaches a fresh per-request profile loader to the
// request context so nothing batched leaks across requests.
func DataLoaderMiddleware(repo repository.ProfileRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loader := profileloader.NewProfileLoader(repo)

			ctx := context.WithValue(r.Context(), profileLoaderKey, loader)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileLoaderFromContext retrieves the per-request loader, or nil outside
// of the middleware.
func ProfileLoaderFromContext(ctx context.Context) *profileloader.ProfileLoader {
	if l, ok := ctx.Value(profileLoaderKey).(*profileloader.ProfileLoader); ok {
		return l
	}
	return nil
}
