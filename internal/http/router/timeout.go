package router

import (
	"context"
	"net/http"
	"time"
)

// requestTimeout bounds the context of every request. Report fetches observe it and
// surface as an aborted report rather than a hung connection.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
