package products

import (
	"fmt"
	"os"
	"strconv"

	"github.com/emporiumlabs/emporium/cmd/emporiumctl/cmdutil"
	"github.com/emporiumlabs/emporium/pkg/apiclient"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get product details",
	Long: `Get detailed information about a catalog product.

Examples:
  # Get product details as table
  emporiumctl products get 42

  # Get as JSON
  emporiumctl products get 42 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

// SingleProductList wraps a single product for table rendering.
type SingleProductList []apiclient.Product

// Headers implements TableRenderer.
func (pl SingleProductList) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (pl SingleProductList) Rows() [][]string {
	if len(pl) == 0 {
		return nil
	}
	p := pl[0]

	rows := [][]string{
		{"ID", strconv.FormatInt(p.ID, 10)},
		{"Name", p.Name},
		{"Brand", cmdutil.EmptyOr(p.Brand, "-")},
		{"Price", formatPrice(p.PriceCents)},
		{"Stock", strconv.Itoa(p.Stock)},
		{"Description", cmdutil.EmptyOr(p.Description, "-")},
		{"Image URL", cmdutil.EmptyOr(p.ImageURL, "-")},
	}
	if !p.CreatedAt.IsZero() {
		rows = append(rows, []string{"Created", p.CreatedAt.Local().Format("2006-01-02 15:04:05")})
	}
	return rows
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q: must be a number", args[0])
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	product, err := client.GetProduct(id)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, product, SingleProductList{*product})
}
