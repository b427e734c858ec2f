// Package metrics exposes Prometheus counters for encoding traffic.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"nonigma/internal/cipher"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK          = "ok"
	ResultInvalidKey  = "invalid_key"
	ResultUnsupported = "unsupported_character"
	ResultError       = "error"
)

// Collector bundles the encoding metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Requests   *prometheus.CounterVec
	Characters *prometheus.CounterVec
	Duration   prometheus.Histogram
}

// New registers the metrics against reg, defaulting to the global registry
// when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nonigma_encode_requests_total",
		Help: "Messages encoded, labeled by result.",
	}, []string{"result"}), "nonigma_encode_requests_total")
	if err != nil {
		return nil, err
	}

	characters, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nonigma_characters_total",
		Help: "Characters processed, labeled by outcome (encoded or stripped).",
	}, []string{"outcome"}), "nonigma_characters_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nonigma_encode_duration_seconds",
		Help:    "Time taken to encode one message.",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	}), "nonigma_encode_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:   gatherer,
		Requests:   requests,
		Characters: characters,
		Duration:   duration,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C, name string) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
			return c, fmt.Errorf("metrics: collector %s already registered with incompatible type", name)
		}
		return c, fmt.Errorf("metrics: register %s: %w", name, err)
	}
	return c, nil
}

// Result classifies an encoding error for the result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, cipher.ErrInvalidKey):
		return ResultInvalidKey
	case errors.Is(err, cipher.ErrUnsupportedCharacter):
		return ResultUnsupported
	default:
		return ResultError
	}
}

// Observe records one encoded message. in and out are the rune counts of the
// input and output; the difference was stripped.
func (c *Collector) Observe(start time.Time, in, out int, err error) {
	if c == nil {
		return
	}
	c.Requests.WithLabelValues(Result(err)).Inc()
	c.Duration.Observe(time.Since(start).Seconds())
	if err != nil {
		return
	}
	c.Characters.WithLabelValues("encoded").Add(float64(out))
	if in > out {
		c.Characters.WithLabelValues("stripped").Add(float64(in - out))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
