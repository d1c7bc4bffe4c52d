// Package metrics exposes Prometheus collectors for the scan pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	lookupsTotal       *prometheus.CounterVec
	fetchAttemptsTotal *prometheus.CounterVec
	deepFetchTotal     *prometheus.CounterVec
	activeLookups      prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call this
// function multiple times; Observe helpers call it on first use.
func Init() {
	once.Do(func() {
		lookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrier_lookups_total",
				Help: "Total identifiers processed, labeled by verdict (accepted or rejection reason).",
			},
			[]string{"verdict"},
		)

		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrier_fetch_attempts_total",
				Help: "Total HTTP fetch attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		deepFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carrier_deep_fetch_total",
				Help: "Deep-fetch email recovery outcomes.",
			},
			[]string{"outcome"},
		)

		activeLookups = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "carrier_active_lookups",
				Help: "Number of pipeline invocations currently in flight.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveVerdict increments the lookup counter for an accepted identifier or
// a rejection reason.
func ObserveVerdict(verdict string) {
	Init()
	lookupsTotal.WithLabelValues(verdict).Inc()
}

// ObserveFetchAttempt increments the attempt counter by outcome.
func ObserveFetchAttempt(ok bool) {
	Init()
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	fetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

// Deep-fetch outcomes.
const (
	DeepFetchFound   = "found"
	DeepFetchMissing = "missing"
	DeepFetchFailed  = "failed"
)

// ObserveDeepFetch records one email-recovery outcome.
func ObserveDeepFetch(outcome string) {
	Init()
	deepFetchTotal.WithLabelValues(outcome).Inc()
}

// IncActiveLookups increments the in-flight gauge.
func IncActiveLookups() {
	Init()
	activeLookups.Inc()
}

// DecActiveLookups decrements the in-flight gauge.
func DecActiveLookups() {
	Init()
	activeLookups.Dec()
}
