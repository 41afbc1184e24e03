// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "climatedash",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "climatedash",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ChartUpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "climatedash",
		Name:      "chart_update_duration_seconds",
		Help:      "Time spent computing the four chart specs.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)
