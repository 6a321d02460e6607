package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/emporiumlabs/emporium/internal/cli/output"
	"github.com/emporiumlabs/emporium/internal/cli/timeutil"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	statusOutput  string
	statusPidFile string
	statusAPIPort int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the current status of the Emporium server.

This command checks the server health by calling the health endpoints and
displays process status, uptime, and whether the instance is ready to serve.
An instance that failed bootstrap never reaches ready, so this also shows
whether the v1 import is holding the instance back.

Examples:
  # Check status (uses default settings)
  emporium status

  # Check status with custom API port
  emporium status --api-port 9080

  # Output as JSON
  emporium status --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/emporium/emporium.pid)")
	statusCmd.Flags().IntVar(&statusAPIPort, "api-port", 8080, "API server port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	Running     bool   `json:"running" yaml:"running"`
	PID         int    `json:"pid,omitempty" yaml:"pid,omitempty"`
	Message     string `json:"message" yaml:"message"`
	StartedAt   string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime      string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Healthy     bool   `json:"healthy" yaml:"healthy"`
	Ready       bool   `json:"ready" yaml:"ready"`
	ReadyReason string `json:"ready_reason,omitempty" yaml:"ready_reason,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	status := ServerStatus{
		Running: false,
		Healthy: false,
		Message: "Server is not running",
	}

	// Use default PID file if not specified
	pidPath := statusPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	// Check PID file first
	pidData, err := os.ReadFile(pidPath)
	if err == nil {
		pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
		if err == nil {
			// Check if process is running
			process, err := os.FindProcess(pid)
			if err == nil {
				// On Unix, FindProcess always succeeds, we need to send signal 0 to check
				err = process.Signal(syscall.Signal(0))
				if err == nil {
					status.Running = true
					status.PID = pid
				}
			}
		}
	}

	// Check health endpoints (works for both daemon and foreground mode)
	client := apiclient.New(fmt.Sprintf("http://localhost:%d", statusAPIPort)).
		WithTimeout(2 * time.Second)

	live, err := client.Health()
	if err == nil {
		status.Running = true
		status.Healthy = live.Healthy()
		if s, ok := live.Data["started_at"].(string); ok {
			status.StartedAt = s
		}
		if s, ok := live.Data["uptime"].(string); ok {
			status.Uptime = s
		}
		if status.Healthy {
			status.Message = "Server is running and healthy"
		} else {
			status.Message = fmt.Sprintf("Server is running but unhealthy: %s", live.Error)
		}

		// Readiness reflects the bootstrap outcome: a 503 here means the
		// instance is still importing or refused to serve
		if ready, err := client.Ready(); err == nil {
			status.Ready = ready.Healthy()
			if !status.Ready {
				status.ReadyReason = ready.Error
			}
		}
	} else if status.Running {
		// PID file says running but health check failed
		status.Message = "Server process exists but health check failed"
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

	if status.Running {
		if status.Healthy {
			fmt.Printf("  Status:     \033[32m● Running\033[0m\n")
		} else {
			fmt.Printf("  Status:     \033[33m● Running (unhealthy)\033[0m\n")
		}
		if status.PID != 0 {
			fmt.Printf("  PID:        %d\n", status.PID)
		}
		if status.StartedAt != "" {
			fmt.Printf("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
		}
		if status.Uptime != "" {
			fmt.Printf("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime))
		}
		if status.Ready {
			fmt.Printf("  Ready:      \033[32myes\033[0m\n")
		} else if status.ReadyReason != "" {
			fmt.Printf("  Ready:      \033[33mno\033[0m (%s)\n", status.ReadyReason)
		}
	} else {
		fmt.Printf("  Status:     \033[31m○ Stopped\033[0m\n")
	}

	fmt.Println()
	fmt.Printf("  %s\n", status.Message)
	fmt.Println()
}
