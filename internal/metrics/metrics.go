package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReferenceRowsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geosampler_reference_rows_loaded_total",
		Help: "Reference rows accepted by a loader",
	})
	ReferenceRowsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosampler_reference_rows_skipped_total",
		Help: "Malformed reference rows dropped by a loader",
	}, []string{"source"})
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosampler_cache_lookups_total",
		Help: "Territory cache lookups by result (hit, miss, corrupt)",
	}, []string{"result"})
	CacheWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geosampler_cache_write_failures_total",
		Help: "Bundles that were built but could not be persisted",
	})
	BuildDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geosampler_build_duration_seconds",
		Help:    "Time spent building a territory bundle",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})
	LocationsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosampler_locations_emitted_total",
		Help: "Sample locations produced by the iterator",
	}, []string{"territory"})
	RequestsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geosampler_requests_total",
		Help: "Sample requests handled by status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(ReferenceRowsLoaded)
	prometheus.MustRegister(ReferenceRowsSkipped)
	prometheus.MustRegister(CacheLookups)
	prometheus.MustRegister(CacheWriteFailures)
	prometheus.MustRegister(BuildDurationSeconds)
	prometheus.MustRegister(LocationsEmitted)
	prometheus.MustRegister(RequestsHandled)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
