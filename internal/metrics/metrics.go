package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cinemabot",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	LookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "lookups_total",
		Help:      "Total movie lookups by outcome (ok, not_found, invalid, error).",
	}, []string{"outcome"})

	LookupDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cinemabot",
		Name:      "lookup_duration_seconds",
		Help:      "End-to-end lookup duration in seconds.",
		Buckets:   []float64{0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "provider_requests_total",
		Help:      "Total requests to external providers by provider name and result status.",
	}, []string{"provider", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cinemabot",
		Name:      "provider_request_duration_seconds",
		Help:      "External provider request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"provider"})

	StoreWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "store_writes_total",
		Help:      "History and stats writes by store name and result status.",
	}, []string{"store", "status"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LookupsTotal,
		LookupDuration,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		StoreWritesTotal,
	)
}
