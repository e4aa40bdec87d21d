// File: control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the chatloop core. The embedding client decides
// whether and where to expose them; nothing here opens a listener.

package control

import "github.com/prometheus/client_golang/prometheus"

var (
	// Dispatches counts callback deliveries routed to a registered target.
	Dispatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatloop_dispatches_total",
		Help: "Total number of host callback deliveries routed by the scheduler.",
	})

	// StaleDispatches counts deliveries for ids that were no longer
	// registered. These are tolerated races, not errors.
	StaleDispatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatloop_stale_dispatches_total",
		Help: "Total number of host callback deliveries dropped for unregistered ids.",
	})

	// HTTPRequests counts HTTP engine outcomes by result class.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatloop_http_requests_total",
		Help: "Total number of HTTP engine attempts by outcome.",
	}, []string{"outcome"})

	// HTTPRetries counts backoff suspensions taken by the HTTP engine.
	HTTPRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatloop_http_retries_total",
		Help: "Total number of HTTP engine backoffs by cause.",
	}, []string{"cause"})

	// Frames counts WebSocket frames handled by the read loop, by opcode
	// class.
	Frames = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chatloop_frames_total",
		Help: "Total number of WebSocket frames processed by the read loop.",
	}, []string{"opcode"})
)

func init() {
	prometheus.MustRegister(
		Dispatches,
		StaleDispatches,
		HTTPRequests,
		HTTPRetries,
		Frames,
	)
}
