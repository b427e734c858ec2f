package server

import (
	"net/http"

	"nonigma/internal/ctxlog"
)

// recoverMiddleware answers with fallback when next panics. Aborted
// handlers are re-panicked so net/http can drop the connection.
func recoverMiddleware(next, fallback http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			ctxlog.Get(r.Context()).Error("handler panicked", "method", r.Method, "path", r.URL.Path, "panic", v)

			clear(w.Header())
			fallback.ServeHTTP(w, r)
		}()

		next.ServeHTTP(w, r)
	})
}
