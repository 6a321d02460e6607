package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/emporiumlabs/emporium/cmd/emporiumctl/cmdutil"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the server read cache",
	Long:  `Commands for inspecting the server-side read cache.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long: `Display statistics for the server's read cache.

Hit and miss counters reset when the server restarts. For the in-memory
driver the used memory figure covers cached values only.

Examples:
  # Show cache statistics
  emporiumctl cache stats

  # Show as JSON
  emporiumctl cache stats -o json`,
	RunE: runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
}

// CacheStatsView renders cache statistics as a field table.
type CacheStatsView apiclient.CacheStats

// Headers implements TableRenderer.
func (v CacheStatsView) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (v CacheStatsView) Rows() [][]string {
	total := v.Hits + v.Misses
	hitRate := "n/a"
	if total > 0 {
		hitRate = fmt.Sprintf("%.1f%%", float64(v.Hits)/float64(total)*100)
	}
	return [][]string{
		{"Driver", v.Driver},
		{"Keys", strconv.FormatInt(v.Keys, 10)},
		{"Used memory", cmdutil.EmptyOr(v.UsedMemory, "n/a")},
		{"Hits", strconv.FormatInt(v.Hits, 10)},
		{"Misses", strconv.FormatInt(v.Misses, 10)},
		{"Hit rate", hitRate},
	}
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	stats, err := client.CacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, stats, CacheStatsView(*stats))
}
