package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomeRejected labels commands refused by the engine
const outcomeRejected = "rejected"

// Metrics counts processed commands
type Metrics struct {
	commands *prometheus.CounterVec
	placed   prometheus.Gauge
}

// NewMetrics registers the service collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toyrobot",
			Name:      "commands_total",
			Help:      "Commands processed, by action and outcome.",
		}, []string{"action", "outcome"}),
		placed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "toyrobot",
			Name:      "unit_placed",
			Help:      "1 when a unit is on the board, 0 otherwise.",
		}),
	}
}

func (m *Metrics) observe(action, outcome string, placed bool) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(action, outcome).Inc()
	if placed {
		m.placed.Set(1)
	} else {
		m.placed.Set(0)
	}
}
