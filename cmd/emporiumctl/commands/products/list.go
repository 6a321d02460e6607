package products

import (
	"fmt"
	"os"
	"strconv"

	"github.com/emporiumlabs/emporium/cmd/emporiumctl/cmdutil"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset int
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog products",
	Long: `List products in the Emporium catalog.

Examples:
  # List products as table
  emporiumctl products list

  # Search by free text
  emporiumctl products list --search "desk lamp"

  # Page through the catalog
  emporiumctl products list --limit 50 --offset 100

  # List as JSON
  emporiumctl products list -o json`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of products to return (0 = server default)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of products to skip")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Free-text search query")
}

// ProductList is a list of products for table rendering.
type ProductList []apiclient.Product

// Headers implements TableRenderer.
func (pl ProductList) Headers() []string {
	return []string{"ID", "NAME", "BRAND", "PRICE", "STOCK"}
}

// Rows implements TableRenderer.
func (pl ProductList) Rows() [][]string {
	rows := make([][]string, 0, len(pl))
	for _, p := range pl {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			cmdutil.EmptyOr(p.Brand, "-"),
			formatPrice(p.PriceCents),
			strconv.Itoa(p.Stock),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	prods, err := client.ListProducts(apiclient.ListProductsOptions{
		Limit:  listLimit,
		Offset: listOffset,
		Search: listSearch,
	})
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, prods, len(prods) == 0, "No products found.", ProductList(prods))
}

// formatPrice renders a cent amount as dollars.
func formatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
