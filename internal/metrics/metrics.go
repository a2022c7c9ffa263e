// Package metrics exposes prometheus instrumentation for the notification core.
// All methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Push outcomes.
const (
	OutcomeDisplayed = "displayed"
	OutcomeScheduled = "scheduled"
	OutcomeFallback  = "fallback"
)

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	pushes        *prometheus.CounterVec
	fired         prometheus.Counter
	cancelled     prometheus.Counter
	faults        *prometheus.CounterVec
	displayErrors prometheus.Counter
	pending       prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		pushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_pushes_total",
				Help: "Number of push operations by outcome",
			},
			[]string{"outcome"},
		),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_scheduled_fired_total",
			Help: "Number of scheduled notifications that fired",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_scheduled_cancelled_total",
			Help: "Number of pending notifications cancelled before firing",
		}),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chime_persistence_faults_total",
				Help: "Number of local store faults by operation",
			},
			[]string{"op"},
		),
		displayErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chime_display_errors_total",
			Help: "Number of failed platform display calls",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chime_scheduled_pending",
			Help: "Number of notifications currently waiting to fire",
		}),
	}

	m.Registry.MustRegister(m.pushes, m.fired, m.cancelled, m.faults, m.displayErrors, m.pending)
	return m
}

func (m *Metrics) Push(outcome string) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Fired() {
	if m == nil {
		return
	}
	m.fired.Inc()
}

func (m *Metrics) Cancelled() {
	if m == nil {
		return
	}
	m.cancelled.Inc()
}

// PersistenceFault counts a failed local store read or write.
func (m *Metrics) PersistenceFault(op string) {
	if m == nil {
		return
	}
	m.faults.WithLabelValues(op).Inc()
}

func (m *Metrics) DisplayError() {
	if m == nil {
		return
	}
	m.displayErrors.Inc()
}

// SetPending records the current size of the scheduler table.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}
