package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "HYPERON_"

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of DefaultConfig, so omitted fields keep their
// defaults. The result is validated. Environment variables are ignored; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention HYPERON_SECTION_FIELD (e.g., HYPERON_STORAGE_PATH) and always
// take precedence over the file.
//
// An empty path skips the file and starts from DefaultConfig.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = DefaultConfig()
	} else {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Malformed numeric, boolean, or duration values are reported as FieldErrors.
func applyEnvOverrides(cfg *Config) error {
	o := envOverrider{}

	o.intVar("INTERPRETER_MAX_STEPS", "interpreter.max_steps", &cfg.Interpreter.MaxSteps)
	o.intVar("INTERPRETER_MAX_DEPTH", "interpreter.max_depth", &cfg.Interpreter.MaxDepth)
	o.boolVar("INTERPRETER_TRACE_STEPS", "interpreter.trace_steps", &cfg.Interpreter.TraceSteps)

	o.stringVar("RUNNER_CWD", &cfg.Runner.Cwd)
	o.boolVar("RUNNER_DISABLE_STDLIB", "runner.disable_stdlib", &cfg.Runner.DisableStdlib)

	o.stringVar("STORAGE_DRIVER", &cfg.Storage.Driver)
	o.stringVar("STORAGE_PATH", &cfg.Storage.Path)
	o.boolVar("STORAGE_WAL_MODE", "storage.wal_mode", &cfg.Storage.WALMode)
	o.durationVar("STORAGE_BUSY_TIMEOUT", "storage.busy_timeout", &cfg.Storage.BusyTimeout)

	o.boolVar("SNAPSHOT_ENABLED", "snapshot.enabled", &cfg.Snapshot.Enabled)
	o.stringVar("SNAPSHOT_SCHEDULE", &cfg.Snapshot.Schedule)
	o.stringVar("SNAPSHOT_NAME", &cfg.Snapshot.Name)
	o.intVar("SNAPSHOT_KEEP", "snapshot.keep", &cfg.Snapshot.Keep)
	o.boolVar("SNAPSHOT_RESTORE_ON_START", "snapshot.restore_on_start", &cfg.Snapshot.RestoreOnStart)

	o.boolVar("WATCH_ENABLED", "watch.enabled", &cfg.Watch.Enabled)
	o.listVar("WATCH_PATHS", &cfg.Watch.Paths)
	o.listVar("WATCH_EXTENSIONS", &cfg.Watch.Extensions)
	o.durationVar("WATCH_DEBOUNCE", "watch.debounce", &cfg.Watch.Debounce)

	o.stringVar("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	o.durationVar("SERVER_SHUTDOWN_TIMEOUT", "server.shutdown_timeout", &cfg.Server.ShutdownTimeout)

	o.stringVar("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	o.stringVar("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	o.boolVar("TELEMETRY_METRICS_ENABLED", "telemetry.metrics.enabled", &cfg.Telemetry.Metrics.Enabled)
	o.stringVar("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	o.boolVar("TELEMETRY_TRACING_ENABLED", "telemetry.tracing.enabled", &cfg.Telemetry.Tracing.Enabled)
	o.stringVar("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	o.stringVar("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	o.floatVar("TELEMETRY_TRACING_SAMPLE_RATIO", "telemetry.tracing.sample_ratio", &cfg.Telemetry.Tracing.SampleRatio)
	o.boolVar("TELEMETRY_HEALTH_ENABLED", "telemetry.health.enabled", &cfg.Telemetry.Health.Enabled)

	if len(o.errs) > 0 {
		return ValidationError{Errors: o.errs}
	}
	return nil
}

// envOverrider reads HYPERON_ variables and collects conversion errors.
type envOverrider struct {
	errs []FieldError
}

func (o *envOverrider) lookup(name string) (string, bool) {
	val := os.Getenv(EnvPrefix + name)
	return val, val != ""
}

func (o *envOverrider) fail(field, name, val string, err error) {
	o.errs = append(o.errs, FieldError{
		Field:   field,
		Message: fmt.Sprintf("invalid value %q in %s%s: %v", val, EnvPrefix, name, err),
	})
}

func (o *envOverrider) stringVar(name string, dst *string) {
	if val, ok := o.lookup(name); ok {
		*dst = val
	}
}

func (o *envOverrider) listVar(name string, dst *[]string) {
	val, ok := o.lookup(name)
	if !ok {
		return
	}
	var list []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	*dst = list
}

func (o *envOverrider) intVar(name, field string, dst *int) {
	val, ok := o.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		o.fail(field, name, val, err)
		return
	}
	*dst = n
}

func (o *envOverrider) floatVar(name, field string, dst *float64) {
	val, ok := o.lookup(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		o.fail(field, name, val, err)
		return
	}
	*dst = f
}

func (o *envOverrider) boolVar(name, field string, dst *bool) {
	val, ok := o.lookup(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		o.fail(field, name, val, err)
		return
	}
	*dst = b
}

func (o *envOverrider) durationVar(name, field string, dst *time.Duration) {
	val, ok := o.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		o.fail(field, name, val, err)
		return
	}
	*dst = d
}
