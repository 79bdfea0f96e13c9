// Package metrics exposes gonfsd's Prometheus counters. It owns its own
// registry rather than using prometheus's global DefaultRegisterer, so a
// disabled server never registers anything and two test servers in the
// same process never collide.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NFS records per-procedure request counts, latency, and in-flight
// concurrency for the NFSv3 program. A nil *NFS is valid and every method
// on it is a no-op, so callers that construct gonfsd with metrics disabled
// pass nil straight through instead of branching on an enabled flag.
type NFS struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewNFS registers gonfsd's NFSv3 metrics on a fresh registry and returns
// both the recorder and an http.Handler serving them in the Prometheus
// exposition format.
func NewNFS() (*NFS, http.Handler) {
	reg := prometheus.NewRegistry()
	m := &NFS{
		requests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gonfsd_nfs_requests_total",
			Help: "Total NFSv3 requests by procedure, export, and nfsstat3 outcome.",
		}, []string{"procedure", "export", "status"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gonfsd_nfs_request_duration_seconds",
			Help:    "NFSv3 request latency by procedure.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
		inFlight: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "gonfsd_nfs_requests_in_flight",
			Help: "NFSv3 requests currently being processed, by procedure.",
		}, []string{"procedure"}),
	}
	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge for procedure. Call it
// before dispatching and pair it with RequestCompleted so the gauge never
// drifts even if the handler panics and recovers elsewhere.
func (m *NFS) RequestStarted(procedure string) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(procedure).Inc()
}

// RequestCompleted records one finished NFSv3 call: it decrements the
// in-flight gauge, increments the outcome counter, and observes latency.
func (m *NFS) RequestCompleted(procedure, export, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(procedure).Dec()
	m.requests.WithLabelValues(procedure, export, status).Inc()
	m.duration.WithLabelValues(procedure).Observe(duration.Seconds())
}
