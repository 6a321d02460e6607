package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/emporiumlabs/emporium/pkg/models"
)

const customerColumns = `id, email, full_name, city, state, country, created_at`

// CreateCustomer inserts a new customer and fills in its generated fields.
// Returns models.ErrDuplicateCustomer if the email is already registered.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	query := `
		INSERT INTO customers (email, full_name, city, state, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		c.Email, c.FullName, c.City, c.State, c.Country,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return mapPgError(err, "CreateCustomer", nil, models.ErrDuplicateCustomer)
	}

	return nil
}

// GetCustomer returns the customer with the given id.
func (s *Store) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var c models.Customer
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Email, &c.FullName, &c.City, &c.State, &c.Country, &c.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "GetCustomer", models.ErrCustomerNotFound, nil)
	}

	return &c, nil
}

// GetCustomerByEmail returns the customer registered under email.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	var c models.Customer
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&c.ID, &c.Email, &c.FullName, &c.City, &c.State, &c.Country, &c.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "GetCustomerByEmail", models.ErrCustomerNotFound, nil)
	}

	return &c, nil
}

// ListCustomers returns customers ordered by id. A non-positive limit falls
// back to 100.
func (s *Store) ListCustomers(ctx context.Context, limit, offset int) ([]models.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapPgError(err, "ListCustomers", nil, nil)
	}

	return scanCustomers(rows)
}

func scanCustomers(rows pgx.Rows) ([]models.Customer, error) {
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(
			&c.ID, &c.Email, &c.FullName, &c.City, &c.State, &c.Country, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	return customers, rows.Err()
}
