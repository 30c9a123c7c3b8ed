package config

import "time"

// Config is the root configuration.
type Config struct {
	// Interpreter contains evaluation budgets.
	Interpreter InterpreterConfig `yaml:"interpreter"`

	// Runner contains program runner configuration.
	Runner RunnerConfig `yaml:"runner"`

	// Storage contains snapshot storage configuration.
	Storage StorageConfig `yaml:"storage"`

	// Snapshot contains scheduled snapshot configuration.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Watch contains knowledge-base watcher configuration.
	Watch WatchConfig `yaml:"watch"`

	// Server contains configuration of the serve command's HTTP server.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains observability configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// InterpreterConfig contains evaluation budgets.
type InterpreterConfig struct {
	// MaxSteps bounds the reduction steps of one top-level evaluation.
	// Default: 1000000
	MaxSteps int `yaml:"max_steps"`

	// MaxDepth bounds the nesting depth of evaluation.
	// Default: 1000
	MaxDepth int `yaml:"max_depth"`

	// TraceSteps logs every reduction step at debug level.
	// Default: false
	TraceSteps bool `yaml:"trace_steps"`
}

// RunnerConfig contains program runner configuration.
type RunnerConfig struct {
	// Cwd is the directory relative file paths are resolved against.
	// Default: "."
	Cwd string `yaml:"cwd"`

	// DisableStdlib skips registering the standard operations.
	// Default: false
	DisableStdlib bool `yaml:"disable_stdlib"`
}

// StorageConfig contains snapshot storage configuration.
type StorageConfig struct {
	// Driver selects the SQLite driver.
	// Options: "sqlite" (modernc.org/sqlite), "sqlite3" (mattn/go-sqlite3)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/snapshots.db"
	Path string `yaml:"path"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SnapshotConfig contains scheduled snapshot configuration.
type SnapshotConfig struct {
	// Enabled turns on scheduled snapshots in serve mode.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Schedule is a standard cron expression.
	// Default: "*/15 * * * *"
	Schedule string `yaml:"schedule"`

	// Name is the snapshot name the space is saved under.
	// Default: "default"
	Name string `yaml:"name"`

	// Keep is how many snapshots to retain after each save.
	// Default: 10
	Keep int `yaml:"keep"`

	// RestoreOnStart loads the latest snapshot before serving.
	// Default: false
	RestoreOnStart bool `yaml:"restore_on_start"`
}

// WatchConfig contains knowledge-base watcher configuration.
type WatchConfig struct {
	// Enabled turns on reloading of changed files in serve mode.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Paths are the files or directories holding the knowledge base.
	Paths []string `yaml:"paths"`

	// Extensions is the list of file extensions to watch.
	// Default: [".metta"]
	Extensions []string `yaml:"extensions"`

	// Debounce is the quiet period before a change is applied.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// SkipHidden skips files and directories starting with a dot.
	// Default: true
	SkipHidden bool `yaml:"skip_hidden"`
}

// ServerConfig contains configuration of the serve command's HTTP server.
type ServerConfig struct {
	// ListenAddress is the address the HTTP server listens on.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "hyperon"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "metta"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for evaluation duration (seconds).
	// Default: [0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30]
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// StepBuckets defines histogram buckets for reduction steps per evaluation.
	// Default: [10, 100, 1000, 10000, 100000, 1000000]
	StepBuckets []float64 `yaml:"step_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP/gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "metta"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
