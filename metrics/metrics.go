// Package metrics exports per-tick collision statistics to Prometheus.
//
// Labels are bounded: the only label is the contact phase.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/milk9111/quadcollide/collision"
)

// Collector implements collision.Stats.
type Collector struct {
	detectDuration prometheus.Histogram
	proxies        prometheus.Gauge
	pairs          prometheus.Gauge
	rebuilds       prometheus.Counter
	contacts       *prometheus.CounterVec
	skipped        prometheus.Counter
}

var _ collision.Stats = (*Collector)(nil)

// New registers the collision metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		detectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "collision_detection_duration_seconds",
			Help:    "Time spent in the detection pass",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016},
		}),
		proxies: f.NewGauge(prometheus.GaugeOpts{
			Name: "collision_partition_proxies",
			Help: "Proxies stored in the partition after the last pass",
		}),
		pairs: f.NewGauge(prometheus.GaugeOpts{
			Name: "collision_overlapping_pairs",
			Help: "Overlapping pairs recorded by the last pass",
		}),
		rebuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "collision_partition_rebuilds_total",
			Help: "Full partition rebuilds",
		}),
		contacts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collision_contacts_total",
			Help: "Pairs dispatched to listeners by the response pass, skipped pairs excluded",
		}, []string{"phase"}), // Bounded: "enter", "stay", "exit"
		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "collision_skipped_pairs_total",
			Help: "Pairs dropped because a side no longer resolved",
		}),
	}
}

func (c *Collector) ObserveDetection(s collision.DetectionStats) {
	if c == nil {
		return
	}
	c.detectDuration.Observe(s.Duration.Seconds())
	c.proxies.Set(float64(s.Proxies))
	c.pairs.Set(float64(s.Pairs))
	if s.Rebuild {
		c.rebuilds.Inc()
	}
}

func (c *Collector) ObserveResponse(s collision.ResponseStats) {
	if c == nil {
		return
	}
	c.contacts.WithLabelValues("enter").Add(float64(s.Enters))
	c.contacts.WithLabelValues("stay").Add(float64(s.Stays))
	c.contacts.WithLabelValues("exit").Add(float64(s.Exits))
	c.skipped.Add(float64(s.Skipped))
}

// Handler serves the metrics gathered by g. A nil g uses the default
// gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
