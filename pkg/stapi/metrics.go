package stapi

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request outcomes as Prometheus collectors. A nil
// *Metrics records nothing.
type Metrics struct {
	mu sync.Mutex

	requestsTotal   *prometheus.CounterVec
	exceptionsTotal *prometheus.CounterVec
	durationHist    *prometheus.HistogramVec

	registerer prometheus.Registerer
	registered bool
}

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stapi",
			Subsystem: "http",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewMetrics creates the collectors. They are registered with registerer,
// the default Prometheus registerer when nil, on Register.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		registerer:      registerer,
		requestsTotal:   newCounterVec("requests_total", "Total number of handled requests", []string{"method", "route", "status"}),
		exceptionsTotal: newCounterVec("exceptions_total", "Total number of requests answered with an exception", []string{"error_code", "status"}),
		durationHist: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stapi",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Time spent running the request pipeline",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Register registers the collectors. Safe to call multiple times.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	requests, err := registerOrExisting(m.registerer, m.requestsTotal)
	if err != nil {
		return err
	}
	exceptions, err := registerOrExisting(m.registerer, m.exceptionsTotal)
	if err != nil {
		return err
	}
	duration, err := registerOrExisting(m.registerer, m.durationHist)
	if err != nil {
		return err
	}
	m.requestsTotal, m.exceptionsTotal, m.durationHist = requests, exceptions, duration

	m.registered = true
	return nil
}

// registerOrExisting registers c, or returns the collector already
// registered under the same descriptor so observations reach it.
func registerOrExisting[C prometheus.Collector](registerer prometheus.Registerer, c C) (C, error) {
	err := registerer.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// Observe records one request. errorCode is empty on success.
func (m *Metrics) Observe(method, route string, status int, errorCode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(method, route, code).Inc()
	m.durationHist.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if errorCode != "" {
		m.exceptionsTotal.WithLabelValues(errorCode, code).Inc()
	}
}
