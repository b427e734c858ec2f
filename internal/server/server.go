// Package server exposes the nonigma cipher over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"nonigma/internal/ctxlog"
	"nonigma/internal/keyring"
	"nonigma/internal/metrics"
	"time"
)

const defaultMaxMessageBytes = 1 << 20

type Server struct {
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	tls             *tlsLoader
	anti            *antidos
}

func New(config Config, collector *metrics.Collector) *Server {
	if config.Port == 0 {
		panic("server: port is required")
	}
	if config.AntidosBuckets == 0 {
		panic("server: antidosBuckets is required")
	}
	if config.AntidosPeriod == 0 {
		panic("server: antidosPeriod is required")
	}
	if config.MaxConcurrent == 0 {
		panic("server: maxConcurrent is required")
	}
	if config.ShutdownTimeout == 0 {
		panic("server: shutdownTimeout is required")
	}
	if (config.CertFile == "") != (config.KeyFile == "") {
		panic("server: certFile and keyFile must be set together")
	}
	if config.MaxMessageBytes == 0 {
		config.MaxMessageBytes = defaultMaxMessageBytes
	}

	notFound := statusHandler(http.StatusNotFound)
	anti := newAntidos(config.AntidosBuckets, config.AntidosPeriod)
	limit := newLimiter(config.AntidosBuckets, config.MaxConcurrent, statusHandler(http.StatusTooManyRequests))

	mux := http.NewServeMux()

	slog.Info("registering handler", "path", "/")
	mux.Handle("/", notFound)

	slog.Info("registering handler", "path", "/encode")
	mux.Handle("POST /encode", anti.middleware(limit.middleware(encodeHandler(config.MaxMessageBytes, collector))))

	slog.Info("registering handler", "path", "/wheels")
	mux.Handle("GET /wheels", cachedHandler(wheelsContent(), contentTypeJSON))

	slog.Info("registering handler", "path", "/machine")
	mux.Handle("GET /machine", cachedHandler(machineContent(), contentTypeJSON))

	if collector != nil {
		slog.Info("registering handler", "path", "/metrics")
		mux.Handle("GET /metrics", collector.Handler())
	}

	if config.AdminKey != "" && keyring.Opened() {
		adm := newAdmin(config.AdminKey, notFound)
		keys := func(h http.Handler) http.Handler {
			return anti.middleware(adm.middleware(h))
		}

		slog.Info("registering handler", "path", "/keys")
		mux.Handle("GET /keys", keys(listKeysHandler()))
		mux.Handle("GET /keys/{name}", keys(getKeyHandler()))
		mux.Handle("PUT /keys/{name}", keys(putKeyHandler(config.MaxMessageBytes)))
		mux.Handle("DELETE /keys/{name}", keys(deleteKeyHandler()))
	} else {
		slog.Warn("key management endpoints disabled", "adminKey", config.AdminKey != "", "keyring", keyring.Opened())
	}

	handler := http.Handler(mux)
	handler = headersMiddleware(handler)
	handler = hostMiddleware(config.Host, handler)
	handler = recoverMiddleware(handler, statusHandler(http.StatusInternalServerError))
	handler = logMiddleware(handler)

	var tl *tlsLoader
	if config.CertFile != "" {
		tl = newTLSLoader(config.CertFile, config.KeyFile, config.TLSReload)
	}

	return &Server{
		addr:            fmt.Sprintf("0.0.0.0:%d", config.Port),
		handler:         handler,
		shutdownTimeout: config.ShutdownTimeout,
		tls:             tl,
		anti:            anti,
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Run(ctx context.Context) error {
	logger := ctxlog.Get(ctx)
	defer s.anti.stop()

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErrCh := make(chan error, 1)
	if s.tls != nil {
		srv.TLSConfig = s.tls.config()
		go s.tls.reloadLoop(ctx)

		go func() {
			defer cancel()
			logger.Info("server is running", "addr", s.addr, "tls", true)
			serveErrCh <- srv.ListenAndServeTLS("", "")
		}()
	} else {
		go func() {
			defer cancel()
			logger.Info("server is running", "addr", s.addr, "tls", false)
			serveErrCh <- srv.ListenAndServe()
		}()
	}

	<-ctx.Done()

	logger.Info("server is shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer stopCancel()
	shutdownErr := srv.Shutdown(stopCtx)

	if errors.Is(shutdownErr, context.DeadlineExceeded) {
		logger.Error("server shutdown timeout exceeded")
	} else if shutdownErr == nil {
		logger.Info("all clients closed successfully")
	}

	serveErr := <-serveErrCh
	if errors.Is(serveErr, http.ErrServerClosed) {
		serveErr = nil
	}

	return errors.Join(serveErr, shutdownErr)
}
