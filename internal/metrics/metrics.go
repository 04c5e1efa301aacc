// Package metrics exposes dispatch and HTTP metrics for Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Send outcomes used as the "outcome" label.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Recorder owns a private registry so tests can create as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	sends         *prometheus.CounterVec
	sendDuration  prometheus.Histogram
	campaigns     prometheus.Counter
	batchSize     prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailmerge",
			Name:      "sends_total",
			Help:      "Individual email sends by outcome.",
		}, []string{"outcome"}),
		sendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mailmerge",
			Name:      "send_duration_seconds",
			Help:      "Latency of a single transport send.",
			Buckets:   prometheus.DefBuckets,
		}),
		campaigns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailmerge",
			Name:      "campaigns_total",
			Help:      "Campaigns dispatched and persisted.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mailmerge",
			Name:      "campaign_recipients",
			Help:      "Recipients per dispatched campaign.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 7),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailmerge",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mailmerge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.sends, r.sendDuration, r.campaigns, r.batchSize,
		r.httpRequests, r.httpDurations,
	)
	return r
}

// ObserveSend records one transport call.
func (r *Recorder) ObserveSend(succeeded bool, elapsed time.Duration) {
	outcome := OutcomeSucceeded
	if !succeeded {
		outcome = OutcomeFailed
	}
	r.sends.WithLabelValues(outcome).Inc()
	r.sendDuration.Observe(elapsed.Seconds())
}

// ObserveCampaign records a persisted campaign of the given size.
func (r *Recorder) ObserveCampaign(recipients int) {
	r.campaigns.Inc()
	r.batchSize.Observe(float64(recipients))
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
