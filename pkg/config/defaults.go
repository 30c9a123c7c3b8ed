package config

import (
	"slices"
	"time"
)

// Default values for configuration fields.
const (
	// Interpreter defaults
	DefaultMaxSteps = 1000000
	DefaultMaxDepth = 1000

	// Runner defaults
	DefaultRunnerCwd = "."

	// Storage defaults
	DefaultStorageDriver      = "sqlite"
	DefaultStoragePath        = "data/snapshots.db"
	DefaultStorageWALMode     = true
	DefaultStorageBusyTimeout = 5 * time.Second

	// Snapshot defaults
	DefaultSnapshotSchedule = "*/15 * * * *"
	DefaultSnapshotName     = "default"
	DefaultSnapshotKeep     = 10

	// Watch defaults
	DefaultWatchDebounce   = 100 * time.Millisecond
	DefaultWatchSkipHidden = true

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9090"
	DefaultReadTimeout     = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "hyperon"
	DefaultMetricsSubsystem   = "metta"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingService     = "metta"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultWatchExtensions are the file extensions watched by default.
var DefaultWatchExtensions = []string{".metta"}

// DefaultDurationBuckets are the evaluation duration histogram buckets.
var DefaultDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// DefaultStepBuckets are the reduction step histogram buckets.
var DefaultStepBuckets = []float64{10, 100, 1000, 10000, 100000, 1000000}

// DefaultConfig returns a configuration with every field at its default,
// including the boolean fields that default to true.
func DefaultConfig() *Config {
	cfg := &Config{
		Storage: StorageConfig{WALMode: DefaultStorageWALMode},
		Watch:   WatchConfig{SkipHidden: DefaultWatchSkipHidden},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
			Tracing: TracingConfig{OTLP: OTLPConfig{Insecure: DefaultOTLPInsecure}},
			Health:  HealthConfig{Enabled: DefaultHealthEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for fields that have zero values. Boolean
// fields cannot be told apart from an explicit false, so LoadConfig decodes
// into DefaultConfig instead of relying on this function for them.
// This function is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Interpreter.MaxSteps == 0 {
		cfg.Interpreter.MaxSteps = DefaultMaxSteps
	}
	if cfg.Interpreter.MaxDepth == 0 {
		cfg.Interpreter.MaxDepth = DefaultMaxDepth
	}

	if cfg.Runner.Cwd == "" {
		cfg.Runner.Cwd = DefaultRunnerCwd
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DefaultStorageDriver
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}

	if cfg.Snapshot.Schedule == "" {
		cfg.Snapshot.Schedule = DefaultSnapshotSchedule
	}
	if cfg.Snapshot.Name == "" {
		cfg.Snapshot.Name = DefaultSnapshotName
	}
	if cfg.Snapshot.Keep == 0 {
		cfg.Snapshot.Keep = DefaultSnapshotKeep
	}

	if len(cfg.Watch.Extensions) == 0 {
		cfg.Watch.Extensions = slices.Clone(DefaultWatchExtensions)
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = slices.Clone(DefaultDurationBuckets)
	}
	if len(cfg.Metrics.StepBuckets) == 0 {
		cfg.Metrics.StepBuckets = slices.Clone(DefaultStepBuckets)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 && cfg.Tracing.Sampler == "ratio" {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
