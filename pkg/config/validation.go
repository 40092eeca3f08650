package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for errors.
//
// Validation happens in two layers:
//  1. Struct tag validation (required fields, value ranges, enums)
//  2. Cross-field checks that struct tags cannot express
//
// Validation never mutates the configuration; normalization belongs to
// ApplyDefaults.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return err
	}

	if err := validateProcesses(cfg.Processes); err != nil {
		return err
	}

	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}

	if err := validatePorts(cfg); err != nil {
		return err
	}

	if err := validateWatch(&cfg.Watch); err != nil {
		return err
	}

	return nil
}

// reservedNames are taken by the built-in components.
var reservedNames = map[string]bool{
	"metrics": true,
	"api":     true,
	"watcher": true,
}

// validateProcesses checks cross-process constraints.
// Process names must be unique: they identify processes in logs, status
// output, and failure reports. Built-in component names are reserved.
func validateProcesses(processes []ProcessConfig) error {
	seen := make(map[string]int, len(processes))

	for i, p := range processes {
		if reservedNames[p.Name] {
			return fmt.Errorf("process %d: name %q is reserved for a built-in component", i, p.Name)
		}
		if first, ok := seen[p.Name]; ok {
			return fmt.Errorf("process %d: duplicate name %q (already used by process %d)", i, p.Name, first)
		}
		seen[p.Name] = i
	}

	return nil
}

// validateTelemetry checks telemetry and profiling endpoint requirements.
func validateTelemetry(cfg *TelemetryConfig) error {
	if cfg.Enabled && cfg.Endpoint == "" {
		return fmt.Errorf("telemetry is enabled but no endpoint is configured")
	}

	if cfg.Profiling.Enabled && cfg.Profiling.Endpoint == "" {
		return fmt.Errorf("profiling is enabled but no endpoint is configured")
	}

	return nil
}

// validatePorts checks that the built-in HTTP servers do not collide.
func validatePorts(cfg *Config) error {
	if cfg.Metrics.Enabled && cfg.API.IsEnabled() && cfg.Metrics.Port == cfg.API.Port {
		return fmt.Errorf("metrics port %d conflicts with api port", cfg.Metrics.Port)
	}

	return nil
}

// validateWatch checks config watching requirements.
func validateWatch(cfg *WatchConfig) error {
	if cfg.Enabled && len(cfg.Paths) == 0 {
		return fmt.Errorf("watch is enabled but no paths are configured")
	}

	return nil
}
