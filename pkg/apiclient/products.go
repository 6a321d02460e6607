package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// Product represents a catalog item.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ListProductsOptions controls product listing.
type ListProductsOptions struct {
	// Limit caps the number of returned products. Zero means the server
	// default.
	Limit int
	// Offset skips that many products for pagination.
	Offset int
	// Search filters products by a free-text query. When set, Offset is
	// ignored by the server.
	Search string
}

// ListProducts returns catalog products.
func (c *Client) ListProducts(opts ListProductsOptions) ([]Product, error) {
	q := url.Values{}
	if opts.Search != "" {
		q.Set("q", opts.Search)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	path := "/api/v1/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return listResources[Product](c, path)
}

// GetProduct returns a single product by id.
func (c *Client) GetProduct(id int64) (*Product, error) {
	return getResource[Product](c, resourcePath("/api/v1/products/%d", id))
}
