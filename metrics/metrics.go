// Package metrics exposes Prometheus instrumentation for the tokenizer server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quicktok"

type Metrics struct {
	registry *prometheus.Registry

	// Requests counts API calls by route and HTTP status.
	Requests *prometheus.CounterVec

	// Tokens observes the number of ids produced per encode request.
	Tokens prometheus.Histogram

	// Bytes counts bytes of text received for encoding.
	Bytes prometheus.Counter
}

// New returns metrics registered on a private registry together with the Go
// runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: newCounterVec("http", "requests_total", "Number of API requests by route and status."),
		Tokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "encode",
			Name:      "tokens",
			Help:      "Number of tokens produced per encode request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "encode",
			Name:      "bytes_total",
			Help:      "Bytes of text received for encoding.",
		}),
	}

	m.registry.MustRegister(
		m.Requests,
		m.Tokens,
		m.Bytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func newCounterVec(subsystem, name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, []string{"route", "status"})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
