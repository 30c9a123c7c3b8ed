package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amebel/hyperon-experimental/pkg/config"
)

// SnapshotMetrics tracks persistence and reload activity.
//
// Metrics:
//   - hyperon_metta_snapshots_total: Snapshot attempts by status
//   - hyperon_metta_snapshot_duration_seconds: Snapshot duration histogram
//   - hyperon_metta_snapshot_atoms: Atoms in the last successful snapshot
//   - hyperon_metta_reloads_total: Knowledge-base reloads by status
//   - hyperon_metta_reloaded_files_total: Files applied by reloads
type SnapshotMetrics struct {
	snapshotsTotal   *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	snapshotAtoms    *prometheus.GaugeVec
	reloadsTotal     *prometheus.CounterVec
	reloadedFiles    prometheus.Counter
}

// NewSnapshotMetrics creates and registers snapshot metrics with the
// provided registry.
func NewSnapshotMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SnapshotMetrics {
	sm := &SnapshotMetrics{
		snapshotsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snapshots_total",
				Help:      "Total number of snapshot attempts",
			},
			[]string{"name", "status"},
		),

		snapshotDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snapshot_duration_seconds",
				Help:      "Duration of snapshots in seconds",
				Buckets:   cfg.DurationBuckets,
			},
		),

		snapshotAtoms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snapshot_atoms",
				Help:      "Number of atoms in the last successful snapshot",
			},
			[]string{"name"},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloads_total",
				Help:      "Total number of knowledge-base reloads",
			},
			[]string{"status"},
		),

		reloadedFiles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloaded_files_total",
				Help:      "Total number of files applied by reloads",
			},
		),
	}

	registry.MustRegister(
		sm.snapshotsTotal,
		sm.snapshotDuration,
		sm.snapshotAtoms,
		sm.reloadsTotal,
		sm.reloadedFiles,
	)
	return sm
}

// RecordSnapshot records one snapshot attempt.
func (sm *SnapshotMetrics) RecordSnapshot(name string, atoms int, duration time.Duration, err error) {
	sm.snapshotDuration.Observe(duration.Seconds())
	if err != nil {
		sm.snapshotsTotal.WithLabelValues(name, "error").Inc()
		return
	}
	sm.snapshotsTotal.WithLabelValues(name, "success").Inc()
	sm.snapshotAtoms.WithLabelValues(name).Set(float64(atoms))
}

// RecordReload records one reload of changed files.
func (sm *SnapshotMetrics) RecordReload(files int, err error) {
	if err != nil {
		sm.reloadsTotal.WithLabelValues("error").Inc()
		return
	}
	sm.reloadsTotal.WithLabelValues("success").Inc()
	sm.reloadedFiles.Add(float64(files))
}
