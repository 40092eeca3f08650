package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the commented configuration file written by
// InitConfig. It must stay loadable by Load with no edits.
const configTemplate = `# Flotilla Configuration File
#
# Flotilla supervises a fleet of child processes: it starts them together,
# watches them, and stops everything in reverse start order when the first
# one fails or a termination signal arrives.
#
# Configuration precedence: CLI flags > FLOTILLA_* environment variables >
# this file > built-in defaults.

# Logging configuration
logging:
  # Log level: DEBUG, INFO, WARN, ERROR
  level: INFO
  # Log format: text, json
  format: text
  # Log output: stdout, stderr, or a file path
  output: stdout

# Single time budget shared by every component stop during graceful
# shutdown. Slow components consume the remaining budget of faster ones.
shutdown_timeout: 30s

# Managed processes. List order is start order; shutdown stops processes
# in reverse. An empty list is a valid fleet that idles until stopped.
processes: []
# Example:
# processes:
#   - name: web
#     command: ./bin/web
#     args: ["--port", "3000"]
#     env:
#       PORT: "3000"
#     stop_signal: TERM
#   - name: worker
#     command: "bundle exec sidekiq 2>&1 | tee worker.log"
#     dir: ./services/worker

# Status API server (GET /health, GET /api/v1/processes)
api:
  enabled: true
  port: 8080

# Prometheus metrics server (GET /metrics)
metrics:
  enabled: false
  port: 9090

# Config file watching. When a watched path changes, Flotilla stops the
# fleet gracefully so a supervising init system can restart it with the
# new configuration.
watch:
  enabled: false
  paths: []
  debounce: 500ms

# OpenTelemetry tracing and Pyroscope profiling (opt-in)
# telemetry:
#   enabled: true
#   endpoint: localhost:4317
#   insecure: true
#   sample_rate: 1.0
#   profiling:
#     enabled: true
#     endpoint: http://localhost:4040
`

// InitConfig creates a configuration file at the default location.
//
// Parameters:
//   - force: Overwrite an existing file
//
// Returns:
//   - string: Path of the created configuration file
//   - error: Creation error, including refusal to overwrite without force
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()

	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}

	return path, nil
}

// InitConfigToPath creates a configuration file at the given path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Restricted permissions: process env blocks may contain credentials.
	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
