package transport

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the bridge's observable transport signals.
type Metrics struct {
	HeartbeatLatency prometheus.Gauge
	HeartbeatMisses  prometheus.Counter
	Reconnects       prometheus.Counter
	RequestRetries   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HeartbeatLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bridge_heartbeat_latency_ms",
			Help: "Round-trip latency of the last acknowledged heartbeat.",
		}),
		HeartbeatMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridge_heartbeat_misses_total",
			Help: "Heartbeats that were not acknowledged within the timeout.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridge_reconnects_total",
			Help: "Connection attempts after the initial connect.",
		}),
		RequestRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bridge_request_retries_total",
			Help: "Acknowledged requests that were re-issued after a timeout.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.HeartbeatLatency, m.HeartbeatMisses, m.Reconnects, m.RequestRetries)
	}
	return m
}
