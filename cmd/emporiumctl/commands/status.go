package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/emporiumlabs/emporium/cmd/emporiumctl/cmdutil"
	"github.com/emporiumlabs/emporium/internal/cli/credentials"
	"github.com/emporiumlabs/emporium/internal/cli/output"
	"github.com/emporiumlabs/emporium/internal/cli/timeutil"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of the connected Emporium server.

This command checks the server health endpoints and displays liveness,
readiness, and uptime. A server that is still bootstrapping (or refused to
serve after a failed bootstrap) shows as not ready with the reason.

Examples:
  # Check status of connected server
  emporiumctl status

  # Output as JSON
  emporiumctl status -o json`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// ServerStatus represents the server status for display.
type ServerStatus struct {
	Server      string `json:"server" yaml:"server"`
	Status      string `json:"status" yaml:"status"`
	Healthy     bool   `json:"healthy" yaml:"healthy"`
	Ready       bool   `json:"ready" yaml:"ready"`
	ReadyReason string `json:"ready_reason,omitempty" yaml:"ready_reason,omitempty"`
	Service     string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt   string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime      string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	serverURL := cmdutil.Flags.ServerURL
	if serverURL == "" {
		// Load credential store
		store, err := credentials.NewStore()
		if err != nil {
			return fmt.Errorf("failed to initialize credential store: %w", err)
		}

		// Get current context
		ctx, err := store.GetCurrentContext()
		if err != nil {
			return fmt.Errorf("not logged in. Run 'emporiumctl login' first")
		}
		serverURL = ctx.ServerURL
	}

	if serverURL == "" {
		return fmt.Errorf("no server configured. Run 'emporiumctl login' first")
	}

	status := ServerStatus{
		Server:  serverURL,
		Status:  "unreachable",
		Healthy: false,
	}

	// Health probes do not require authentication
	client := apiclient.New(serverURL).WithTimeout(5 * time.Second)

	live, err := client.Health()
	if err != nil {
		status.Error = err.Error()
	} else {
		status.Status = live.Status
		status.Healthy = live.Healthy()
		if s, ok := live.Data["service"].(string); ok {
			status.Service = s
		}
		if s, ok := live.Data["started_at"].(string); ok {
			status.StartedAt = s
		}
		if s, ok := live.Data["uptime"].(string); ok {
			status.Uptime = s
		}
		if live.Error != "" {
			status.Error = live.Error
		}

		if ready, err := client.Ready(); err == nil {
			status.Ready = ready.Healthy()
			if !status.Ready {
				status.ReadyReason = ready.Error
			}
		}
	}

	// Output based on format
	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, status)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, status)
	default:
		printStatusTable(status)
	}

	return nil
}

func printStatusTable(status ServerStatus) {
	fmt.Println()
	fmt.Println("Emporium Server Status")
	fmt.Println("======================")
	fmt.Println()
	fmt.Printf("  Server:     %s\n", status.Server)

	if status.Healthy {
		fmt.Printf("  Status:     \033[32m● %s\033[0m\n", status.Status)
	} else if status.Status == "unreachable" {
		fmt.Printf("  Status:     \033[31m○ %s\033[0m\n", status.Status)
	} else {
		fmt.Printf("  Status:     \033[33m● %s\033[0m\n", status.Status)
	}

	if status.Healthy {
		if status.Ready {
			fmt.Printf("  Ready:      \033[32myes\033[0m\n")
		} else {
			fmt.Printf("  Ready:      \033[33mno\033[0m (%s)\n", cmdutil.EmptyOr(status.ReadyReason, "unknown"))
		}
	}

	if status.Service != "" {
		fmt.Printf("  Service:    %s\n", status.Service)
	}
	if status.StartedAt != "" {
		fmt.Printf("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
	}
	if status.Uptime != "" {
		fmt.Printf("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime))
	}
	if status.Error != "" {
		fmt.Printf("  Error:      %s\n", status.Error)
	}
	fmt.Println()
}
