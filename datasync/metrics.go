package datasync

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics count what goes through a sync server.
type Metrics struct {
	Packets    prometheus.Counter
	Units      prometheus.Counter
	Bins       prometheus.Counter
	Interrupts prometheus.Counter
}

// NewMetrics returns unregistered metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Packets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "satvec_sync_packets_total",
				Help: "Monotonic count of packets received from workers",
			},
		),
		Units: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "satvec_sync_units_received_total",
				Help: "Monotonic count of unit clauses received from workers, including duplicates",
			},
		),
		Bins: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "satvec_sync_bins_received_total",
				Help: "Monotonic count of binary clauses received from workers, including duplicates",
			},
		),
		Interrupts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "satvec_sync_interrupts_total",
				Help: "Monotonic count of workers told to stop",
			},
		),
	}
}

// Register registers all metrics in r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Packets, m.Units, m.Bins, m.Interrupts} {
		if err := r.Register(c); err != nil {
			return errors.Wrap(err, "cannot register sync metrics")
		}
	}
	return nil
}
