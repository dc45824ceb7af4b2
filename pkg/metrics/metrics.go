// Package metrics exposes the Prometheus metrics of last page discovery.
// Metrics are defined in their respective packages (client, pagination, store)
// and registered with the default registry via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the Prometheus registerer all metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler serving the default gatherer in the
// Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewServer returns an HTTP server exposing Handler on /metrics.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - lastpage_requests_total{status} (Counter): Page requests by HTTP status or "network_error"
//   - lastpage_request_duration_seconds (Histogram): Page request duration
//   - lastpage_errors_total{class} (Counter): Failed or non-200 requests by class (client, server, network)
//
// Search Metrics (pkg/pagination):
//   - lastpage_probes_total{outcome} (Counter): Probes by outcome (populated, template, empty)
//   - lastpage_batches_total (Counter): Probe batches issued
//   - lastpage_batch_duration_seconds (Histogram): Probe batch duration
//   - lastpage_scope_advances_total (Counter): Scopes exhausted without an empty page
//   - lastpage_discovery_duration_seconds (Histogram): Duration of completed searches
//
// Store Metrics (pkg/store):
//   - lastpage_store_records_written_total (Counter): Discovery records written
//   - lastpage_store_errors_total{operation} (Counter): Store operation errors
//
// Example Prometheus Queries:
//
//   # Share of probes that failed or came back empty
//   sum(rate(lastpage_probes_total{outcome="empty"}[5m])) / sum(rate(lastpage_probes_total[5m]))
//
//   # Batches per discovery run
//   rate(lastpage_batches_total[1h]) / rate(lastpage_discovery_duration_seconds_count[1h])
//
//   # P95 page request latency
//   histogram_quantile(0.95, rate(lastpage_request_duration_seconds_bucket[5m]))
