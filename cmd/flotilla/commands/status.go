package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/flotilla/internal/cli/output"
	"github.com/marmos91/flotilla/internal/cli/timeutil"
	"github.com/marmos91/flotilla/pkg/api/handlers"
	"github.com/marmos91/flotilla/pkg/config"
)

var (
	statusPidFile string
	statusAPIPort int
	statusOutput  string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fleet status",
	Long: `Show the status of the running fleet.

Queries the supervisor's local status API and prints a per-process view:
state, PID, uptime, and exit code for anything that has already stopped.

Examples:
  # Show fleet status
  flotilla status

  # Machine-readable output
  flotilla status -o json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/flotilla/flotilla.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 0, "Status API port (default: from config, or 8080)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format: table, json, yaml")
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, running := isProcessRunning(pidPath)
	if !running {
		if format == output.FormatTable {
			fmt.Println("Fleet is not running")
			return nil
		}
		return output.NewPrinter(os.Stdout, format, false).Print(map[string]any{
			"running": false,
		})
	}

	status, err := fetchFleetStatus(resolveAPIPort())
	if err != nil {
		return fmt.Errorf("supervisor is running (PID %d) but the status API is unreachable: %w\n\nIs the API enabled in your configuration?", pid, err)
	}

	if format != output.FormatTable {
		return output.NewPrinter(os.Stdout, format, false).Print(status)
	}

	printFleetStatus(pid, status)
	return nil
}

// resolveAPIPort returns the port of the status API, preferring the
// --api-port flag over the loaded configuration.
func resolveAPIPort() int {
	if statusAPIPort != 0 {
		return statusAPIPort
	}
	cfg, err := config.Load(GetConfigFile())
	if err != nil || cfg.API.Port == 0 {
		return 8080
	}
	return cfg.API.Port
}

// fetchFleetStatus queries the supervisor's status endpoint.
func fetchFleetStatus(port int) (*handlers.FleetStatus, error) {
	client := &http.Client{Timeout: 5 * time.Second}

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/status", port)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status API returned %s", resp.Status)
	}

	var status handlers.FleetStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status response: %w", err)
	}
	return &status, nil
}

func printFleetStatus(pid int, status *handlers.FleetStatus) {
	fmt.Printf("Fleet is running (PID %d)\n", pid)
	fmt.Printf("  Run ID:  %s\n", status.RunID)
	fmt.Printf("  Started: %s\n", status.StartedAt.Local().Format(timeutil.LocalTimeFormat))
	fmt.Printf("  Uptime:  %s\n", timeutil.FormatUptime(status.Uptime))
	fmt.Println()

	table := output.NewTableData("NAME", "KIND", "STATE", "PID", "UPTIME", "EXIT")
	for _, p := range status.Processes {
		table.AddRow(
			p.Name,
			p.Kind,
			p.State,
			formatPID(p.PID),
			formatComponentUptime(p),
			formatExit(p.ExitCode),
		)
	}
	if err := output.PrintTable(os.Stdout, table); err != nil {
		PrintErr("failed to render table: %v", err)
	}

	for _, p := range status.Processes {
		if p.State == handlers.StateFailed && p.Error != "" {
			fmt.Printf("\n%s: %s\n", p.Name, p.Error)
		}
	}
}

func formatPID(pid int) string {
	if pid == 0 {
		return "-"
	}
	return strconv.Itoa(pid)
}

func formatExit(code *int) string {
	if code == nil {
		return "-"
	}
	return strconv.Itoa(*code)
}

func formatComponentUptime(p handlers.ProcessStatus) string {
	if p.StartedAt == nil {
		return "-"
	}
	end := time.Now()
	if p.StoppedAt != nil {
		end = *p.StoppedAt
	}
	return timeutil.FormatUptime(end.Sub(*p.StartedAt).Round(time.Second).String())
}
