package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	synthesis prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "testpiper_tts_requests_total",
			Help: "TTS requests by response code.",
		}, []string{"code"}),
		synthesis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "testpiper_tts_synthesis_seconds",
			Help:    "Wall time spent synthesizing speech.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.requests, m.synthesis)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
