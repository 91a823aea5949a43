// Package metrics registers the Prometheus collectors exposed by the
// monitor surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swingscan",
		Name:      "provider_requests_total",
		Help:      "Outbound quote requests per provider.",
	}, []string{"provider"})

	ProviderFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swingscan",
		Name:      "provider_failures_total",
		Help:      "Failed quote requests per provider.",
	}, []string{"provider"})

	ProviderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "swingscan",
		Name:      "provider_fallbacks_total",
		Help:      "Quotes answered by a non-primary provider.",
	}, []string{"provider"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "swingscan",
		Name:      "scan_duration_seconds",
		Help:      "Wall time of one full scan invocation.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	SymbolsScanned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swingscan",
		Name:      "symbols_scanned_total",
		Help:      "Symbols processed across all scans.",
	})

	OpportunitiesFound = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "swingscan",
		Name:      "opportunities_total",
		Help:      "Symbols that reached a BUY decision.",
	})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
