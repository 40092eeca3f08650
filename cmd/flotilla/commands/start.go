package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/flotilla/internal/logger"
	"github.com/marmos91/flotilla/internal/telemetry"
	"github.com/marmos91/flotilla/pkg/config"
	"github.com/marmos91/flotilla/pkg/supervisor"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the process fleet",
	Long: `Start the fleet of processes declared in the configuration file.

By default, the supervisor runs in the background (daemon mode). Use
--foreground to run attached, for debugging or when managed by an init
system such as systemd.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/flotilla/config.yaml.

Examples:
  # Start in background (default)
  flotilla start

  # Start in foreground
  flotilla start --foreground

  # Start with custom config file
  flotilla start --config /etc/flotilla/config.yaml

  # Start with environment variable overrides
  FLOTILLA_LOGGING_LEVEL=DEBUG flotilla start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/flotilla/flotilla.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/flotilla/flotilla.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := context.Background()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "flotilla",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "flotilla",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	}

	// Assemble the fleet
	s, err := supervisor.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to build fleet: %w", err)
	}

	// Trace exporter and profiler flush only after every component has
	// stopped; components may emit spans right up to that point.
	if err := s.OnRelease("telemetry", func() error { return telemetryShutdown(context.Background()) }); err != nil {
		return err
	}
	if err := s.OnRelease("profiling", profilingShutdown); err != nil {
		return err
	}

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	logger.Info("Fleet is running. Press Ctrl+C to stop.", logger.RunID(s.RunID()))

	// Run blocks until every component has returned; signal handling and
	// first-failure cancellation live in the lifecycle library.
	runErr := s.Run(ctx)
	shutdownErr := s.Shutdown()

	if runErr == nil && shutdownErr == nil {
		logger.Info("Shutdown completed")
		return nil
	}

	// One consolidated report: run failures first, then shutdown failures.
	return errors.Join(runErr, shutdownErr)
}
