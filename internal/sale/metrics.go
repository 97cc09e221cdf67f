package sale

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the controller's activity to Prometheus. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	refreshes   *prometheus.CounterVec
	investments *prometheus.CounterVec
	raised      prometheus.Gauge
	hardCap     prometheus.Gauge
	phase       prometheus.Gauge
	connected   prometheus.Gauge
}

// NewMetrics creates the sale metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "krypton",
			Name:      "sale_refreshes_total",
			Help:      "Snapshot refreshes by result (applied, stale, failed).",
		}, []string{"result"}),
		investments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "krypton",
			Name:      "sale_investments_total",
			Help:      "Investment attempts by result.",
		}, []string{"result"}),
		raised: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "krypton",
			Name:      "sale_raised_ether",
			Help:      "Total ether raised by the sale at the last refresh.",
		}),
		hardCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "krypton",
			Name:      "sale_hard_cap_ether",
			Help:      "Hard cap of the sale in ether.",
		}),
		phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "krypton",
			Name:      "sale_phase",
			Help:      "Sale phase (0 unknown, 1 before start, 2 running, 3 after end, 4 halted, 5 error).",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "krypton",
			Name:      "wallet_connected",
			Help:      "1 while a signing account is connected.",
		}),
	}
	reg.MustRegister(m.refreshes, m.investments, m.raised, m.hardCap, m.phase, m.connected)
	return m
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) invest(result string) {
	if m == nil {
		return
	}
	m.investments.WithLabelValues(result).Inc()
}

func (m *Metrics) snapshot(s Snapshot) {
	if m == nil {
		return
	}
	raised, _ := s.TotalRaised.Float64()
	hardCap, _ := s.HardCap.Float64()
	m.raised.Set(raised)
	m.hardCap.Set(hardCap)
	m.phase.Set(float64(s.Phase))
}

func (m *Metrics) session(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}
