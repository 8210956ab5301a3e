package app

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Instruction outcomes recorded by Metrics.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
	outcomeStore    = "store_error"
)

// Metrics holds the server's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	instructions *prometheus.CounterVec
	connections  prometheus.Gauge
	balance      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		instructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletd",
				Name:      "instructions_total",
				Help:      "Instructions processed, by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletd",
			Name:      "connections_active",
			Help:      "Open client connections.",
		}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletd",
			Name:      "balance",
			Help:      "Last committed balance.",
		}),
	}
	for _, c := range []prometheus.Collector{m.instructions, m.connections, m.balance} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordInstruction(kind, outcome string) {
	if m == nil {
		return
	}
	m.instructions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) setBalance(v uint16) {
	if m == nil {
		return
	}
	m.balance.Set(float64(v))
}
