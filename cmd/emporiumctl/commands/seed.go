package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/emporiumlabs/emporium/cmd/emporiumctl/cmdutil"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "List applied data migrations",
	Long: `List the data migrations recorded in the server's seed ledger, oldest first.

Each record marks one bulk import applied exactly once per database, with
the row counts it wrote and a checksum of its payload.

Examples:
  # List applied data migrations
  emporiumctl seed

  # Show as JSON
  emporiumctl seed -o json`,
	RunE: runSeed,
}

// SeedList is a list of applied data migrations for table rendering.
type SeedList []apiclient.SeedRecord

// Headers implements TableRenderer.
func (sl SeedList) Headers() []string {
	return []string{"VERSION", "NAME", "ROWS", "APPLIED BY", "APPLIED AT", "DURATION"}
}

// Rows implements TableRenderer.
func (sl SeedList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, rec := range sl {
		rows = append(rows, []string{
			strconv.FormatInt(rec.Version, 10),
			rec.Name,
			strconv.Itoa(rec.TotalRows()),
			cmdutil.EmptyOr(rec.AppliedBy, "-"),
			rec.AppliedAt.Local().Format("2006-01-02 15:04:05"),
			formatRunDuration(rec.DurationMs),
		})
	}
	return rows
}

func runSeed(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	records, err := client.SeedRecords()
	if err != nil {
		return fmt.Errorf("failed to list data migrations: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, records, len(records) == 0, "No data migrations applied.", SeedList(records))
}
