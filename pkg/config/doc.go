// Package config loads the YAML configuration of the metta command.
//
// # Loading
//
// LoadConfig decodes a YAML file on top of DefaultConfig and validates it:
//
//	cfg, err := config.LoadConfig("metta.yaml")
//
// LoadConfigWithEnvOverrides additionally applies HYPERON_SECTION_FIELD
// environment variables, which take precedence over the file:
//
//	HYPERON_INTERPRETER_MAX_STEPS=50000
//	HYPERON_STORAGE_DRIVER=sqlite3
//	HYPERON_WATCH_PATHS=kb/,rules.metta
//
// # Example
//
//	interpreter:
//	  max_steps: 1000000
//	  max_depth: 1000
//	runner:
//	  cwd: "."
//	storage:
//	  driver: "sqlite"
//	  path: "data/snapshots.db"
//	snapshot:
//	  enabled: true
//	  schedule: "0 * * * *"
//	  keep: 24
//	watch:
//	  enabled: true
//	  paths: ["kb"]
//	telemetry:
//	  logging:
//	    level: "debug"
//	    format: "json"
//
// # Validation
//
// Validate collects every problem into a ValidationError holding one
// FieldError per offending field.
//
// # Global configuration
//
// Initialize, GetConfig, and ReloadConfig manage a process-wide instance.
// Libraries should take explicit configuration instead.
package config
