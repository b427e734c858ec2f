package server

import (
	"net/http"
)

// limiter caps the number of requests a bucket of clients may have in flight
// and turns away the excess.
type limiter struct {
	buckets         []chan struct{}
	tooManyRequests http.Handler
}

func newLimiter(buckets int, maxConcurrent int, tooManyRequests http.Handler) *limiter {
	b := make([]chan struct{}, buckets)
	for i := 0; i < buckets; i++ {
		b[i] = make(chan struct{}, maxConcurrent)
	}

	return &limiter{
		buckets:         b,
		tooManyRequests: tooManyRequests,
	}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tickets := l.buckets[clientBucket(r, len(l.buckets))]

		select {
		case tickets <- struct{}{}:
			defer func() { <-tickets }()
			next.ServeHTTP(w, r)

		default:
			l.tooManyRequests.ServeHTTP(w, r)
		}
	})
}
