// Package metrics collects and exposes Prometheus metrics for the push
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts dispatch outcomes.
type Collector struct {
	delivered prometheus.Counter
	failed    prometheus.Counter
	expired   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_tickles_delivered_total",
			Help: "Tickle pushes accepted by a push service (2xx).",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_tickles_failed_total",
			Help: "Tickle pushes that failed transiently (non-2xx, non-410, or network error).",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_subscriptions_expired_total",
			Help: "Subscriptions deleted after the push service reported 410 Gone.",
		}),
	}

	reg.MustRegister(c.delivered, c.failed, c.expired)
	return c
}

// RecordDelivered counts a successful tickle.
func (c *Collector) RecordDelivered() { c.delivered.Inc() }

// RecordFailed counts a transient delivery failure.
func (c *Collector) RecordFailed() { c.failed.Inc() }

// RecordExpired counts a subscription removed as permanently gone.
func (c *Collector) RecordExpired() { c.expired.Inc() }

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
