package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/emporiumlabs/emporium/pkg/models"
)

const productColumns = `id, name, brand, description, price_cents, stock, image_url, created_at`

// CreateProduct inserts a new product and fills in its generated fields.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	query := `
		INSERT INTO products (name, brand, description, price_cents, stock, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		p.Name, p.Brand, p.Description, p.PriceCents, p.Stock, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return mapPgError(err, "CreateProduct", nil, models.ErrDuplicateProduct)
	}

	return nil
}

// GetProduct returns the product with the given id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p models.Product
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Brand, &p.Description, &p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "GetProduct", models.ErrProductNotFound, nil)
	}

	return &p, nil
}

// ListProducts returns products ordered by id. A non-positive limit falls
// back to 100.
func (s *Store) ListProducts(ctx context.Context, limit, offset int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapPgError(err, "ListProducts", nil, nil)
	}

	return scanProducts(rows)
}

// SearchProducts returns products whose name or brand matches the query,
// case-insensitively.
func (s *Store) SearchProducts(ctx context.Context, search string, limit int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR brand ILIKE $1
		ORDER BY name
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, "%"+search+"%", limit)
	if err != nil {
		return nil, mapPgError(err, "SearchProducts", nil, nil)
	}

	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]models.Product, error) {
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Description, &p.PriceCents, &p.Stock, &p.ImageURL, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
