package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"nonigma/internal/ctxlog"
)

// tlsLoader serves the most recently loaded certificate. The key pair is
// reloaded whenever either file's modification time changes.
type tlsLoader struct {
	certFile string
	keyFile  string
	interval time.Duration

	cert    atomic.Pointer[tls.Certificate]
	modTime time.Time
}

func newTLSLoader(certFile, keyFile string, interval time.Duration) *tlsLoader {
	l := &tlsLoader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
	}

	if _, err := l.reload(); err != nil {
		panic(fmt.Errorf("server: %w", err))
	}

	return l
}

func (l *tlsLoader) latestModTime() (time.Time, error) {
	var latest time.Time
	for _, name := range []string{l.certFile, l.keyFile} {
		fi, err := os.Stat(name)
		if err != nil {
			return time.Time{}, fmt.Errorf("stat %q: %w", name, err)
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}
	return latest, nil
}

// reload reports whether a new key pair was loaded. It is only called from
// the constructor and the reload loop, so modTime needs no locking.
func (l *tlsLoader) reload() (bool, error) {
	mt, err := l.latestModTime()
	if err != nil {
		return false, fmt.Errorf("tls cert: %w", err)
	}
	if l.cert.Load() != nil && mt.Equal(l.modTime) {
		return false, nil
	}

	c, err := tls.LoadX509KeyPair(l.certFile, l.keyFile)
	if err != nil {
		return false, fmt.Errorf("load tls cert: %w", err)
	}

	l.cert.Store(&c)
	l.modTime = mt
	return true, nil
}

func (l *tlsLoader) config() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return l.cert.Load(), nil
		},
	}
}

func (l *tlsLoader) reloadLoop(ctx context.Context) {
	if l.interval <= 0 {
		return
	}

	logger := ctxlog.Get(ctx).With("cert", l.certFile)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			switch changed, err := l.reload(); {
			case err != nil:
				logger.Error("reload tls cert", "error", err)
			case changed:
				logger.Info("reloaded tls cert")
			}
		}
	}
}
