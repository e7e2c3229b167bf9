// Package metrics exposes discover session counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements matching.Observer on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetches      *prometheus.CounterVec
	fetchedTotal *prometheus.CounterVec
	swipes       *prometheus.CounterVec
	undos        *prometheus.CounterVec
	callLatency  *prometheus.HistogramVec
	liveSessions prometheus.GaugeFunc
}

// New registers the collectors. sessions reports the live session count.
func New(sessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discover",
			Name:      "candidate_fetches_total",
			Help:      "Candidate fetches by kind and outcome.",
		}, []string{"op", "outcome"}),
		fetchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discover",
			Name:      "candidates_fetched_total",
			Help:      "Candidates returned by the scoring call.",
		}, []string{"op"}),
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discover",
			Name:      "swipes_total",
			Help:      "Swipe commits by decision and outcome.",
		}, []string{"decision", "outcome"}),
		undos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discover",
			Name:      "undos_total",
			Help:      "Undo deletes by outcome.",
		}, []string{"outcome"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "discover",
			Name:      "remote_call_seconds",
			Help:      "Latency of remote calls made by sessions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"call"}),
	}
	if sessions == nil {
		sessions = func() int { return 0 }
	}
	m.liveSessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "discover",
		Name:      "sessions_live",
		Help:      "Discover sessions currently registered.",
	}, func() float64 { return float64(sessions()) })

	m.registry.MustRegister(m.fetches, m.fetchedTotal, m.swipes, m.undos, m.callLatency, m.liveSessions)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) CandidatesFetched(op string, n int, err error, elapsed time.Duration) {
	m.fetches.WithLabelValues(op, outcome(err)).Inc()
	m.fetchedTotal.WithLabelValues(op).Add(float64(n))
	m.callLatency.WithLabelValues("fetch").Observe(elapsed.Seconds())
}

func (m *Metrics) SwipeRecorded(liked bool, err error, elapsed time.Duration) {
	decision := "dislike"
	if liked {
		decision = "like"
	}
	m.swipes.WithLabelValues(decision, outcome(err)).Inc()
	m.callLatency.WithLabelValues("record").Observe(elapsed.Seconds())
}

func (m *Metrics) SwipeDeleted(err error, elapsed time.Duration) {
	m.undos.WithLabelValues(outcome(err)).Inc()
	m.callLatency.WithLabelValues("delete").Observe(elapsed.Seconds())
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
