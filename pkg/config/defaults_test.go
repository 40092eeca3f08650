package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_API(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.API.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.API.Port)
	}
	if cfg.API.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.API.ReadTimeout)
	}
	if cfg.API.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout 10s, got %v", cfg.API.WriteTimeout)
	}
	if cfg.API.IdleTimeout != 60*time.Second {
		t.Errorf("Expected default idle timeout 60s, got %v", cfg.API.IdleTimeout)
	}
}

func TestApplyDefaults_Processes(t *testing.T) {
	cfg := &Config{
		Processes: []ProcessConfig{
			{Name: "web", Command: "./bin/web"},
			{Name: "worker", Command: "./bin/worker", StopSignal: "int"},
		},
	}
	ApplyDefaults(cfg)

	if cfg.Processes[0].StopSignal != "TERM" {
		t.Errorf("Expected default stop signal 'TERM', got %q", cfg.Processes[0].StopSignal)
	}
	// Signal names are normalized to uppercase
	if cfg.Processes[1].StopSignal != "INT" {
		t.Errorf("Expected normalized stop signal 'INT', got %q", cfg.Processes[1].StopSignal)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	// Disabled metrics get no port default
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Port != 0 {
		t.Errorf("Expected no metrics port when disabled, got %d", cfg.Metrics.Port)
	}

	// Enabled metrics default to port 9090
	cfg = &Config{Metrics: MetricsConfig{Enabled: true}}
	ApplyDefaults(cfg)

	if cfg.Metrics.Port != 9090 {
		t.Errorf("Expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestApplyDefaults_Watch(t *testing.T) {
	// Disabled watching gets no debounce default
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Watch.Debounce != 0 {
		t.Errorf("Expected no debounce when watching disabled, got %v", cfg.Watch.Debounce)
	}

	// Enabled watching defaults to 500ms debounce
	cfg = &Config{Watch: WatchConfig{Enabled: true, Paths: []string{"/etc/flotilla"}}}
	ApplyDefaults(cfg)

	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/flotilla.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Processes: []ProcessConfig{
			{Name: "web", Command: "./bin/web", StopSignal: "QUIT"},
		},
		Metrics: MetricsConfig{Enabled: true, Port: 9100},
	}

	ApplyDefaults(cfg)

	// Verify explicit values were preserved
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/flotilla.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Processes[0].StopSignal != "QUIT" {
		t.Errorf("Expected explicit stop signal 'QUIT' to be preserved, got %q", cfg.Processes[0].StopSignal)
	}
	if cfg.Metrics.Port != 9100 {
		t.Errorf("Expected explicit metrics port 9100 to be preserved, got %d", cfg.Metrics.Port)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	// The default config should pass validation
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	// Check all required sections are present
	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.API.Port == 0 {
		t.Error("Default config missing API port")
	}
	if cfg.ShutdownTimeout == 0 {
		t.Error("Default config missing shutdown timeout")
	}
}
