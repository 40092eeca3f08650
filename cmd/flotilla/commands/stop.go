package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	stopPidFile string
	stopForce   bool
)

// errProcessDone reports that the target process had already exited.
var errProcessDone = errors.New("process already stopped")

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the process fleet",
	Long: `Stop a running flotilla supervisor and its fleet.

By default, sends SIGTERM for graceful shutdown: the supervisor stops
every process in reverse start order within its configured shutdown
budget. Use --force for immediate termination with SIGKILL.

Examples:
  # Stop fleet (uses default PID file)
  flotilla stop

  # Stop fleet using custom PID file
  flotilla stop --pid-file /var/run/flotilla.pid

  # Force stop (SIGKILL)
  flotilla stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/flotilla/flotilla.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Force kill (SIGKILL) instead of graceful shutdown (SIGTERM)")
}

func runStop(cmd *cobra.Command, args []string) error {
	// Use default PID file if not specified
	pidPath := stopPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	// Read PID file
	pidData, err := os.ReadFile(pidPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("PID file not found: %s\n\nIs the fleet running?", pidPath)
		}
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	// Parse PID
	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil {
		return fmt.Errorf("invalid PID in file: %s", string(pidData))
	}

	// Find the process
	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	if err := stopProcess(process, pid, stopForce); err != nil {
		if errors.Is(err, errProcessDone) {
			fmt.Println("Fleet already stopped")
			_ = os.Remove(pidPath)
			return nil
		}
		return err
	}

	if stopForce {
		fmt.Println("Supervisor terminated")
	} else {
		fmt.Println("Shutdown signal sent. The fleet will stop gracefully.")
	}

	return nil
}
