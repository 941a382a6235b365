// Package telemetry holds the service's prometheus collectors. Everything
// is registered at init and exposed through promhttp in the app's mux.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ActiveStreams tracks currently open SSE connections.
	ActiveStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "threadloom_active_streams",
		Help: "Number of open thread stream connections.",
	})

	// EventsEmitted counts SSE events by event name.
	EventsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "threadloom_stream_events_total",
		Help: "SSE events emitted, by event name.",
	}, []string{"event"})

	// PollsTotal counts poll attempts against the thread store proxy.
	PollsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "threadloom_polls_total",
		Help: "Thread store polls attempted by stream sessions.",
	})

	// PollErrors counts failed polls. Failures are non-fatal to streams.
	PollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "threadloom_poll_errors_total",
		Help: "Thread store polls that returned an error.",
	})

	// ProxyCallDuration observes thread store proxy RPC latency by method.
	ProxyCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "threadloom_proxy_call_seconds",
		Help:    "Latency of thread store proxy RPC calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// KickoffsComposed counts kickoff messages produced.
	KickoffsComposed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "threadloom_kickoffs_composed_total",
		Help: "Kickoff messages composed.",
	})

	// DeltasParsed counts delta parse outcomes ("valid" or "invalid").
	DeltasParsed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "threadloom_deltas_parsed_total",
		Help: "Delta parse results, by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		ActiveStreams,
		EventsEmitted,
		PollsTotal,
		PollErrors,
		ProxyCallDuration,
		KickoffsComposed,
		DeltasParsed,
	)
}

// ObserveProxyCall records one proxy RPC's latency.
func ObserveProxyCall(method string, start time.Time) {
	ProxyCallDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// CountDelta records a parse outcome.
func CountDelta(valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	DeltasParsed.WithLabelValues(outcome).Inc()
}
