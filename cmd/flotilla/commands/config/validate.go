package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/flotilla/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the flotilla configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  flotilla config validate

  # Validate specific config file
  flotilla config validate --config /etc/flotilla/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	if !cfg.API.IsEnabled() {
		warnings = append(warnings, "Status API disabled - 'flotilla status' will not be able to query the fleet")
	}

	for _, p := range cfg.Processes {
		if p.StopSignal == "KILL" {
			warnings = append(warnings, fmt.Sprintf("Process %q uses stop signal KILL - it will never shut down gracefully", p.Name))
		}
	}

	if cfg.Watch.Enabled && len(cfg.Watch.Paths) == 0 {
		warnings = append(warnings, "Config watching enabled but no paths configured")
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  Processes:        %d\n", len(cfg.Processes))
	fmt.Printf("  Shutdown timeout: %s\n", cfg.ShutdownTimeout)
	fmt.Printf("  API port:         %d\n", cfg.API.Port)
	fmt.Printf("  Log level:        %s\n", cfg.Logging.Level)

	return nil
}
