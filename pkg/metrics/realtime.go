package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RealtimeMetrics records fan-out activity for the bid broadcaster.
type RealtimeMetrics struct {
	subscribers prometheus.Gauge
	published   prometheus.Counter
	dropped     prometheus.Counter
}

// NewRealtimeMetrics registers the broadcaster metrics on the provided registerer.
func NewRealtimeMetrics(reg prometheus.Registerer) *RealtimeMetrics {
	if reg == nil {
		return &RealtimeMetrics{}
	}
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscribers",
		Help: "Currently connected realtime subscribers.",
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_events_published",
		Help: "Bid events handed to the broadcaster.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realtime_events_dropped",
		Help: "Bid events dropped because a subscriber buffer was full.",
	})
	reg.MustRegister(subscribers, published, dropped)
	return &RealtimeMetrics{
		subscribers: subscribers,
		published:   published,
		dropped:     dropped,
	}
}

// SubscriberConnected increments the connected subscriber gauge.
func (r *RealtimeMetrics) SubscriberConnected() {
	if r == nil || r.subscribers == nil {
		return
	}
	r.subscribers.Inc()
}

// SubscriberDisconnected decrements the connected subscriber gauge.
func (r *RealtimeMetrics) SubscriberDisconnected() {
	if r == nil || r.subscribers == nil {
		return
	}
	r.subscribers.Dec()
}

// IncPublished increments the published event counter.
func (r *RealtimeMetrics) IncPublished() {
	if r == nil || r.published == nil {
		return
	}
	r.published.Inc()
}

// IncDropped increments the dropped event counter.
func (r *RealtimeMetrics) IncDropped() {
	if r == nil || r.dropped == nil {
		return
	}
	r.dropped.Inc()
}
