package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_InvalidAPIPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Port = 70000 // Out of range

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for port out of range")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_NegativePort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.API.Port = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative port")
	}
}

func TestValidate_MissingShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ShutdownTimeout = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for missing shutdown timeout")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("Expected 'required' validation error, got: %v", err)
	}
}

func TestValidate_NegativeShutdownTimeout(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.ShutdownTimeout = -time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for negative shutdown timeout")
	}
	if !strings.Contains(err.Error(), "gt") {
		t.Errorf("Expected 'gt' validation error, got: %v", err)
	}
}

func TestValidate_ProcessMissingName(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Processes = []ProcessConfig{
		{Command: "./bin/web", StopSignal: "TERM"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for process without name")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("Expected 'required' validation error, got: %v", err)
	}
}

func TestValidate_ProcessMissingCommand(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Processes = []ProcessConfig{
		{Name: "web", StopSignal: "TERM"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for process without command")
	}
}

func TestValidate_ProcessNameTooLong(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Processes = []ProcessConfig{
		{Name: strings.Repeat("x", 65), Command: "./bin/web", StopSignal: "TERM"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for overlong process name")
	}
	if !strings.Contains(err.Error(), "max") {
		t.Errorf("Expected 'max' validation error, got: %v", err)
	}
}

func TestValidate_DuplicateProcessNames(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Processes = []ProcessConfig{
		{Name: "web", Command: "./bin/web", StopSignal: "TERM"},
		{Name: "worker", Command: "./bin/worker", StopSignal: "TERM"},
		{Name: "web", Command: "./bin/web2", StopSignal: "TERM"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for duplicate process names")
	}
	if !strings.Contains(err.Error(), "duplicate name") {
		t.Errorf("Expected duplicate name error, got: %v", err)
	}
}

func TestValidate_ReservedProcessName(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Processes = []ProcessConfig{
		{Name: "api", Command: "./bin/api", StopSignal: "TERM"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for reserved process name")
	}
	if !strings.Contains(err.Error(), "reserved") {
		t.Errorf("Expected reserved name error, got: %v", err)
	}
}

func TestValidate_InvalidStopSignal(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Processes = []ProcessConfig{
		{Name: "web", Command: "./bin/web", StopSignal: "SIGTERM"},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for unsupported stop signal")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for telemetry enabled without endpoint")
	}
	if !strings.Contains(err.Error(), "telemetry") && !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("Expected error about telemetry endpoint, got: %v", err)
	}
}

func TestValidate_TelemetrySampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.SampleRate = 1.5 // Out of range (should be 0.0-1.0)

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sample rate out of range")
	}
}

func TestValidate_WatchEnabledWithoutPaths(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Watch.Enabled = true
	cfg.Watch.Paths = nil

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for watch enabled without paths")
	}
	if !strings.Contains(err.Error(), "paths") {
		t.Errorf("Expected error about watch paths, got: %v", err)
	}
}

func TestValidate_MetricsPortConflict(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = cfg.API.Port

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for conflicting ports")
	}
	if !strings.Contains(err.Error(), "conflicts") {
		t.Errorf("Expected port conflict error, got: %v", err)
	}
}

func TestValidate_LogLevelNormalization(t *testing.T) {
	// Test that validation accepts both uppercase and lowercase log levels
	testCases := []string{"info", "INFO", "debug", "DEBUG", "warn", "WARN", "error", "ERROR"}

	for _, level := range testCases {
		cfg := GetDefaultConfig()
		cfg.Logging.Level = level

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validation failed for level %q: %v", level, err)
		}

		// Validation should NOT normalize - level should remain as-is
		if cfg.Logging.Level != level {
			t.Errorf("Expected level to remain %q after validation, got %q", level, cfg.Logging.Level)
		}
	}

	// Test that normalization happens in ApplyDefaults
	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	ApplyDefaults(cfg)
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected ApplyDefaults to normalize 'info' to 'INFO', got %q", cfg.Logging.Level)
	}
}
