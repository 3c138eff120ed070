package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baletrack_cache_lookups_total",
			Help: "Read cache lookups by collection and result (hit, miss, shared).",
		},
		[]string{"collection", "result"},
	)
	cacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baletrack_cache_invalidations_total",
			Help: "Collection-wide cache invalidations after writes.",
		},
		[]string{"collection"},
	)
	remoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baletrack_remote_requests_total",
			Help: "Requests sent to the remote data service.",
		},
		[]string{"method", "collection", "outcome"},
	)
	remoteLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "baletrack_remote_request_seconds",
			Help:    "Latency of requests to the remote data service.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "collection"},
	)
	sessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baletrack_session_transitions_total",
			Help: "Session state machine transitions by destination state.",
		},
		[]string{"state"},
	)
	csrfRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baletrack_csrf_rejections_total",
			Help: "Unsafe requests refused for a missing or mismatched CSRF token.",
		},
		[]string{"reason"},
	)
)

func CacheHit(collection string)    { cacheLookups.WithLabelValues(collection, "hit").Inc() }
func CacheMiss(collection string)   { cacheLookups.WithLabelValues(collection, "miss").Inc() }
func CacheShared(collection string) { cacheLookups.WithLabelValues(collection, "shared").Inc() }

func CacheInvalidated(collection string) {
	cacheInvalidations.WithLabelValues(collection).Inc()
}

// ObserveRemote records one remote call. outcome is "ok" or an HTTP status class.
func ObserveRemote(method, collection, outcome string, took time.Duration) {
	remoteRequests.WithLabelValues(method, collection, outcome).Inc()
	remoteLatency.WithLabelValues(method, collection).Observe(took.Seconds())
}

func SessionEntered(state string) {
	sessionTransitions.WithLabelValues(state).Inc()
}

func CSRFRejected(reason string) {
	csrfRejections.WithLabelValues(reason).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
