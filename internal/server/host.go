package server

import (
	"net/http"
)

// hostMiddleware redirects requests for any other host name to host.
// Requests without a Host header are left alone.
func hostMiddleware(host string, next http.Handler) http.Handler {
	if host == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Host != "" && r.Host != host {
			w.Header().Set("Location", "//"+host+r.URL.RequestURI())
			w.WriteHeader(http.StatusPermanentRedirect)
			return
		}

		next.ServeHTTP(w, r)
	})
}
