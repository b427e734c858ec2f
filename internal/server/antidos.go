package server

import (
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"time"
)

// clientBucket spreads clients over n buckets by remote host.
func clientBucket(r *http.Request, n int) int {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return 0
	}
	h := fnv.New64()
	io.WriteString(h, host)
	return int(h.Sum64() % uint64(n))
}

// antidos lets one request per period through for each bucket of clients.
type antidos struct {
	buckets []*time.Ticker
}

func newAntidos(buckets int, period time.Duration) *antidos {
	b := make([]*time.Ticker, buckets)
	for i := 0; i < buckets; i++ {
		b[i] = time.NewTicker(period)
	}

	return &antidos{
		buckets: b,
	}
}

func (a *antidos) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-a.buckets[clientBucket(r, len(a.buckets))].C:
			next.ServeHTTP(w, r)

		case <-r.Context().Done():
		}
	})
}

func (a *antidos) stop() {
	for _, t := range a.buckets {
		t.Stop()
	}
}
