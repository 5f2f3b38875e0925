package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	pageBuilds *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bikedash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		pageBuilds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bikedash",
			Name:      "view_build_duration_seconds",
			Help:      "Time to build a view page, including aggregations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"view", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.pageBuilds,
	)
	return m
}
