package metrics

import (
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amebel/hyperon-experimental/pkg/config"
	"github.com/amebel/hyperon-experimental/pkg/space"
)

// maxOperationLabels bounds the distinct operation label values of the
// grounded call metrics. Further operations are reported as "other".
const maxOperationLabels = 500

// Collector owns the Prometheus metrics of the interpreter, its spaces, and
// the snapshot and reload machinery. It implements interpreter.Recorder.
//
// A disabled collector accepts every call and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluationMetrics *EvaluationMetrics
	spaceMetrics      *SpaceMetrics
	snapshotMetrics   *SnapshotMetrics

	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector registering its metrics with registry.
// If registry is nil a new one is created.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	in, _ := interpreter.New(nil, logger, interpreter.WithRecorder(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.DefaultConfig().Telemetry.Metrics
	}

	// The caller's configuration is left untouched.
	c := *cfg
	if c.Namespace == "" {
		c.Namespace = config.DefaultMetricsNamespace
	}
	if c.Subsystem == "" {
		c.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(c.DurationBuckets) == 0 {
		c.DurationBuckets = slices.Clone(config.DefaultDurationBuckets)
	}
	if len(c.StepBuckets) == 0 {
		c.StepBuckets = slices.Clone(config.DefaultStepBuckets)
	}

	return &Collector{
		config:             &c,
		registry:           registry,
		evaluationMetrics:  NewEvaluationMetrics(&c, registry),
		spaceMetrics:       NewSpaceMetrics(&c, registry),
		snapshotMetrics:    NewSnapshotMetrics(&c, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxOperationLabels),
	}
}

// Registry returns the registry the collector's metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordEvaluation records a finished top-level evaluation.
func (c *Collector) RecordEvaluation(outcome string, steps int, results int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.evaluationMetrics.RecordEvaluation(outcome, steps, results, duration)
}

// RecordGroundedCall records one execution of a grounded operation.
func (c *Collector) RecordGroundedCall(operation string, failed bool) {
	if !c.config.Enabled {
		return
	}
	if !c.cardinalityLimiter.Allow(operation) {
		operation = "other"
	}
	status := "success"
	if failed {
		status = "error"
	}
	c.evaluationMetrics.RecordGroundedCall(operation, status)
}

// ObserveSpace tracks the size and modifications of sp under the given
// name. The returned function stops tracking.
func (c *Collector) ObserveSpace(name string, sp *space.GroundingSpace) func() {
	if !c.config.Enabled {
		return func() {}
	}
	c.spaceMetrics.SetAtoms(name, sp.Len())
	return sp.RegisterObserver(space.ObserverFunc(func(e space.Event) {
		c.spaceMetrics.RecordModification(name, string(e.Type))
		c.spaceMetrics.SetAtoms(name, sp.Len())
	}))
}

// RecordSnapshot records a snapshot attempt. err is nil on success.
func (c *Collector) RecordSnapshot(name string, atoms int, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.snapshotMetrics.RecordSnapshot(name, atoms, duration, err)
}

// RecordReload records a reload of changed knowledge-base files.
func (c *Collector) RecordReload(files int, err error) {
	if !c.config.Enabled {
		return
	}
	c.snapshotMetrics.RecordReload(files, err)
}

// CardinalityLimiter limits the number of unique label values a metric can
// take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether the value is already known or can still be added.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
