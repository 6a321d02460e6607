// Package products implements catalog browsing commands for emporiumctl.
package products

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for catalog products.
var Cmd = &cobra.Command{
	Use:   "products",
	Short: "Browse catalog products",
	Long: `Browse the products in the Emporium catalog.

Catalog browsing does not require a login; a server URL from --server or a
stored context is enough.

Examples:
  # List products
  emporiumctl products list

  # Search the catalog
  emporiumctl products list --search "desk lamp"

  # Get product details
  emporiumctl products get 42`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(getCmd)
}
