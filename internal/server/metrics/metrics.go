// Package metrics exposes Prometheus collectors for the dashboard server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors owns a private registry so that several servers (and tests)
// can live in one process.
type Collectors struct {
	registry       *prometheus.Registry
	registrations  *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subdash_registrations_total",
			Help: "Member registrations by outcome.",
		}, []string{"outcome"}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subdash_report_duration_seconds",
			Help:    "Time spent computing a report.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subdash_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subdash_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.registrations,
		c.reportDuration,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry is exposed for tests and for registering extra collectors.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collectors) ObserveRegistration(err error) {
	c.registrations.WithLabelValues(outcome(err)).Inc()
}

func (c *Collectors) ObserveReport(report string, d time.Duration, err error) {
	c.reportDuration.WithLabelValues(report, outcome(err)).Observe(d.Seconds())
}

func (c *Collectors) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
