package server

import (
	"crypto/subtle"
	"net/http"
)

type admin struct {
	key             string
	notFoundHandler http.Handler
}

func newAdmin(key string, notFoundHandler http.Handler) *admin {
	return &admin{
		key:             key,
		notFoundHandler: notFoundHandler,
	}
}

func (a *admin) authorized(r *http.Request) bool {
	given := r.Header.Get("X-Admin-Key")
	if given == "" {
		if cookie, _ := r.Cookie("X-Admin-Key"); cookie != nil {
			given = cookie.Value
		}
	}
	return given != "" && subtle.ConstantTimeCompare([]byte(given), []byte(a.key)) == 1
}

// middleware hides the wrapped routes behind a 404 unless the admin key is
// presented.
func (a *admin) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}

		a.notFoundHandler.ServeHTTP(w, r)
	})
}
