package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "homelab_docs"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route template, method and status code."},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by route template.", Buckets: prometheus.DefBuckets},
		[]string{"route", "method"},
	)
	SearchQueries = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "search_queries_total", Help: "Number of search queries executed."},
	)
	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "search_results", Help: "Number of matches per search query.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50}},
	)
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "auth_attempts_total", Help: "Login attempts by outcome."},
		[]string{"outcome"},
	)
	SnapshotsExported = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "snapshots_exported_total", Help: "Catalog snapshots uploaded to object storage."},
	)
)

// RegisterCollectors registers the package collectors on reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(SearchQueries)
	reg.MustRegister(SearchResults)
	reg.MustRegister(AuthAttempts)
	reg.MustRegister(SnapshotsExported)
}

// RegisterContentGauges exposes collection sizes. count is called on every
// scrape and should return -1 on failure.
func RegisterContentGauges(reg prometheus.Registerer, count func(collection string) float64) {
	for _, c := range []string{"documents", "tutorials", "services", "users"} {
		c := c
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "content_records",
				Help:        "Number of records per content collection.",
				ConstLabels: prometheus.Labels{"collection": c},
			},
			func() float64 { return count(c) },
		))
	}
}
