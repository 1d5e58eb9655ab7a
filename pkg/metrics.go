package chanselect

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run counters of the selection.
type Metrics struct {
	registry *prometheus.Registry

	EventsProcessed   prometheus.Counter
	EventsFailed      prometheus.Counter
	PulsesTotal       prometheus.Counter
	PulsesSelected    prometheus.Counter
	PulsesDropped     *prometheus.CounterVec
	JetsTotal         prometheus.Counter
	JetsBelowPtCutoff prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "events_processed_total",
			Help:      "Number of events that went through the channel selection",
		}),
		EventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "events_failed_total",
			Help:      "Number of events whose selection returned an error",
		}),
		PulsesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "pulses_total",
			Help:      "Number of channel pulses seen",
		}),
		PulsesSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "pulses_selected_total",
			Help:      "Number of channel pulses kept by the selection",
		}),
		PulsesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "pulses_dropped_total",
			Help:      "Number of channel pulses dropped, by reason",
		}, []string{"reason"}),
		JetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "jets_total",
			Help:      "Number of jet candidates seen",
		}),
		JetsBelowPtCutoff: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chanselect",
			Name:      "jets_below_pt_cutoff_total",
			Help:      "Number of jet candidates softer than the Pt cutoff",
		}),
	}
	m.registry.MustRegister(
		m.EventsProcessed,
		m.EventsFailed,
		m.PulsesTotal,
		m.PulsesSelected,
		m.PulsesDropped,
		m.JetsTotal,
		m.JetsBelowPtCutoff,
	)
	return m
}

// Observe accounts for one selected event. The summary is empty for
// selectors which do not prune.
func (m *Metrics) Observe(result SelectionResult, nJets int, summary PruneSummary) {
	m.EventsProcessed.Inc()
	m.PulsesTotal.Add(float64(len(result.Selected)))
	m.PulsesSelected.Add(float64(result.NumSelected()))
	m.PulsesDropped.WithLabelValues("unassociated").Add(float64(summary.Unassociated))
	m.PulsesDropped.WithLabelValues("et_budget").Add(float64(summary.BudgetDropped))
	m.PulsesDropped.WithLabelValues("jet_pt").Add(float64(summary.PtDropped))
	m.JetsTotal.Add(float64(nJets))
	if summary.GoodJets != nil {
		m.JetsBelowPtCutoff.Add(float64(nJets - len(summary.GoodJets)))
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteToFile dumps the counters in the text exposition format.
func (m *Metrics) WriteToFile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}
