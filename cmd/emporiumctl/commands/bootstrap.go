package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/emporiumlabs/emporium/cmd/emporiumctl/cmdutil"
	"github.com/emporiumlabs/emporium/internal/cli/output"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Show the latest bootstrap run",
	Long: `Display the most recent bootstrap run recorded on the server instance.

The bootstrap run shows whether the instance migrated and imported its v1
store, skipped because the seed was already applied, or failed partway.

Examples:
  # Show the latest run
  emporiumctl bootstrap

  # Show as JSON
  emporiumctl bootstrap -o json

  # List recorded runs
  emporiumctl bootstrap runs`,
	RunE: runBootstrapStatus,
}

var bootstrapRunsLimit int

var bootstrapRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded bootstrap runs",
	Long: `List the bootstrap runs recorded in the instance-local journal, newest first.

Every process start records a run, including disabled ones (all steps
skipped) and failed ones.

Examples:
  # List recent runs
  emporiumctl bootstrap runs

  # List more history
  emporiumctl bootstrap runs --limit 50`,
	RunE: runBootstrapRuns,
}

func init() {
	bootstrapRunsCmd.Flags().IntVar(&bootstrapRunsLimit, "limit", 20, "Maximum number of runs to list")
	bootstrapCmd.AddCommand(bootstrapRunsCmd)
}

// RunList is a list of bootstrap runs for table rendering.
type RunList []apiclient.BootstrapRun

// Headers implements TableRenderer.
func (rl RunList) Headers() []string {
	return []string{"RUN ID", "STARTED", "FLAG", "SEED", "APPLIED", "DURATION", "OUTCOME"}
}

// Rows implements TableRenderer.
func (rl RunList) Rows() [][]string {
	rows := make([][]string, 0, len(rl))
	for _, run := range rl {
		flag := "disabled"
		if run.Enabled {
			flag = "enabled"
		}
		outcome := "failed"
		if run.Success {
			outcome = "ok"
		}
		rows = append(rows, []string{
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			flag,
			strconv.FormatInt(run.SeedVersion, 10),
			cmdutil.BoolToYesNo(run.SeedApplied),
			formatRunDuration(run.DurationMs),
			outcome,
		})
	}
	return rows
}

func runBootstrapStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	run, err := client.BootstrapStatus()
	if err != nil {
		return fmt.Errorf("failed to get bootstrap status: %w", err)
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewPrinter(os.Stdout, format, false).Print(run)
	}

	return printRunTable(run)
}

func runBootstrapRuns(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	runs, err := client.BootstrapRuns(bootstrapRunsLimit)
	if err != nil {
		return fmt.Errorf("failed to list bootstrap runs: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, runs, len(runs) == 0, "No bootstrap runs recorded.", RunList(runs))
}

// printRunTable renders one run as a field table followed by its steps.
func printRunTable(run *apiclient.BootstrapRun) error {
	flag := "disabled"
	if run.Enabled {
		flag = "enabled"
	}
	outcome := "FAILED"
	if run.Success {
		outcome = "OK"
	}

	pairs := [][2]string{
		{"Run ID", run.RunID},
		{"Instance", run.Instance},
		{"Bootstrap flag", flag},
		{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Duration", formatRunDuration(run.DurationMs)},
		{"Schema version", strconv.FormatUint(uint64(run.SchemaVersion), 10)},
		{"Seed version", strconv.FormatInt(run.SeedVersion, 10)},
		{"Seed applied", cmdutil.BoolToYesNo(run.SeedApplied)},
		{"Outcome", outcome},
	}
	if run.Error != "" {
		pairs = append(pairs, [2]string{"Error", run.Error})
	}
	if err := output.SimpleTable(os.Stdout, pairs); err != nil {
		return err
	}

	if len(run.Steps) == 0 {
		return nil
	}

	fmt.Println()
	table := output.NewTableData("STEP", "STATUS", "DURATION", "DETAIL")
	for _, step := range run.Steps {
		detail := step.Detail
		if step.Error != "" {
			detail = step.Error
		}
		table.AddRow(step.Name, step.Status, formatRunDuration(step.DurationMs), detail)
	}
	return output.PrintTable(os.Stdout, table)
}

func formatRunDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
