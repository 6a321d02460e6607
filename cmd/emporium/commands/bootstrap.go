package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/emporiumlabs/emporium/internal/cli/output"
	"github.com/emporiumlabs/emporium/pkg/bootstrap"
	"github.com/emporiumlabs/emporium/pkg/config"
	"github.com/spf13/cobra"
)

var bootstrapOutput string

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Run the bootstrap sequence without serving",
	Long: `Run the bootstrap sequence once and exit without starting the API server.

When the bootstrap flag is enabled this migrates the catalog schema, exports
the embedded v1 store into a snapshot artifact, loads it into the shared
database, and removes the legacy file. When the flag is disabled all steps
are skipped and the database is not touched.

The run is recorded in the instance-local journal either way, and re-running
is safe: an already-applied seed version makes the export and load steps
skip instead of duplicating data.

The command exits non-zero when any step fails, so it can gate deployment
pipelines that bring instances up separately.

Examples:
  # Run bootstrap with default config
  emporium bootstrap

  # Run with custom config, JSON result for scripting
  emporium bootstrap --config /etc/emporium/config.yaml --output json

  # Preview what a disabled instance would do
  EMPORIUM_BOOTSTRAP_ENABLED=false emporium bootstrap`,
	RunE: runBootstrap,
}

func init() {
	bootstrapCmd.Flags().StringVarP(&bootstrapOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(bootstrapOutput)
	if err != nil {
		return err
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// A bulk import can run for minutes; Ctrl+C cancels it cleanly and the
	// transactional load leaves the database unseeded rather than partial
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	env, err := buildBootEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	res, runErr := env.coord.Run(ctx)

	// The result prints even when the run failed; the failing step carries
	// the error detail
	if err := printBootstrapResult(format, res); err != nil {
		return err
	}

	if runErr != nil {
		return fmt.Errorf("bootstrap failed: %w", runErr)
	}
	return nil
}

func printBootstrapResult(format output.Format, res *bootstrap.Result) error {
	if format != output.FormatTable {
		return output.NewPrinter(os.Stdout, format, false).Print(res)
	}

	flag := "disabled"
	if res.Enabled {
		flag = "enabled"
	}
	outcome := "FAILED"
	if res.Success {
		outcome = "OK"
	}

	pairs := [][2]string{
		{"Run ID", res.RunID},
		{"Instance", res.Instance},
		{"Bootstrap flag", flag},
		{"Started", res.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Duration", formatMillis(res.DurationMs)},
		{"Schema version", strconv.FormatUint(uint64(res.SchemaVersion), 10)},
		{"Seed version", strconv.FormatInt(res.SeedVersion, 10)},
		{"Seed applied", strconv.FormatBool(res.SeedApplied)},
		{"Outcome", outcome},
	}
	if err := output.SimpleTable(os.Stdout, pairs); err != nil {
		return err
	}

	if len(res.Steps) == 0 {
		return nil
	}

	fmt.Println()
	table := output.NewTableData("STEP", "STATUS", "DURATION", "DETAIL")
	for _, step := range res.Steps {
		detail := step.Detail
		if step.Error != "" {
			detail = step.Error
		}
		table.AddRow(string(step.Name), string(step.Status), formatMillis(step.DurationMs), detail)
	}
	return output.PrintTable(os.Stdout, table)
}

// formatMillis renders a millisecond count the way durations read in logs.
func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
