package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/amebel/hyperon-experimental/pkg/config"
)

// SpaceMetrics tracks the contents of observed spaces.
//
// Metrics:
//   - hyperon_metta_space_atoms: Current number of atoms per space
//   - hyperon_metta_space_modifications_total: Modifications by space and type
type SpaceMetrics struct {
	atoms         *prometheus.GaugeVec
	modifications *prometheus.CounterVec
}

// NewSpaceMetrics creates and registers space metrics with the provided
// registry.
func NewSpaceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SpaceMetrics {
	sm := &SpaceMetrics{
		atoms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "space_atoms",
				Help:      "Current number of atoms in the space",
			},
			[]string{"space"},
		),

		modifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "space_modifications_total",
				Help:      "Total number of space modifications",
			},
			[]string{"space", "type"},
		),
	}

	registry.MustRegister(sm.atoms, sm.modifications)
	return sm
}

// SetAtoms sets the current atom count of a space.
func (sm *SpaceMetrics) SetAtoms(name string, n int) {
	sm.atoms.WithLabelValues(name).Set(float64(n))
}

// RecordModification counts one modification of a space.
func (sm *SpaceMetrics) RecordModification(name, kind string) {
	sm.modifications.WithLabelValues(name, kind).Inc()
}
