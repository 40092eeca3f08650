package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/flotilla/internal/cli/prompt"
	"github.com/marmos91/flotilla/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample flotilla configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/flotilla/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  flotilla init

  # Initialize with custom path
  flotilla init --config /etc/flotilla/config.yaml

  # Force overwrite existing config
  flotilla init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	targetPath := configFile
	if targetPath == "" {
		targetPath = config.GetDefaultConfigPath()
	}

	// Confirm before clobbering an existing file unless --force was given.
	if _, err := os.Stat(targetPath); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Config file %s already exists. Overwrite?", targetPath), initForce)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
		initForce = true
	}

	var configPath string
	var err error

	if configFile != "" {
		// Use custom path
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		// Use default path
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to declare your processes")
	fmt.Println("  2. Start the fleet with: flotilla start")
	fmt.Printf("  3. Or specify custom config: flotilla start --config %s\n", configPath)

	return nil
}
