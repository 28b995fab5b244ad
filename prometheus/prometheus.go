package prometheus

import (
	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "devicesweep"

// Metrics holds the counters of a single run. Each run gets its own registry
// so the textfile only carries this run's values.
type Metrics struct {
	Registry      *prometheus.Registry
	Actions       *prometheus.CounterVec
	Secondary     *prometheus.CounterVec
	Candidates    prometheus.Gauge
	GuardExcluded prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Primary actions attempted, by action and outcome.",
		}, []string{"action", "outcome"}),
		Secondary: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_total",
			Help:      "Directory device deletions, by outcome.",
		}, []string{"outcome"}),
		Candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "candidates",
			Help:      "Entities that passed the filter.",
		}),
		GuardExcluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "guard_excluded",
			Help:      "Devices held back by the check-in age guard.",
		}),
	}
	m.Registry.MustRegister(m.Actions, m.Secondary, m.Candidates, m.GuardExcluded)
	return m
}

// Observe counts one executed result
func (m *Metrics) Observe(r types.ActionResult) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(r.Action.String(), string(r.Primary)).Inc()
	m.Secondary.WithLabelValues(string(r.Secondary)).Inc()
}

// SetFiltered records the filter partition sizes
func (m *Metrics) SetFiltered(candidates, guardExcluded int) {
	if m == nil {
		return
	}
	m.Candidates.Set(float64(candidates))
	m.GuardExcluded.Set(float64(guardExcluded))
}

// WriteTextfile exports the registry for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Wrapf(err, "WriteTextfile %v", path)
	}
	log.Debugf("Wrote metrics to %v", path)
	return nil
}
