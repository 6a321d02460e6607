package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/emporiumlabs/emporium/pkg/models"
)

const orderColumns = `id, customer_id, ordered_item, quantity, total_cents, card_id, address, paid, paid_at, delivered, delivered_at, created_at`

// CreateOrder places an order, decrementing the product's stock in the same
// transaction. The product row is locked for the duration so concurrent
// orders cannot oversell.
//
// Returns models.ErrProductNotFound if no product matches the ordered item,
// models.ErrInsufficientStock if fewer units remain than requested, and
// models.ErrCustomerNotFound if the customer does not exist.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		var productID int64
		var stock int
		err := tx.QueryRow(ctx,
			`SELECT id, stock FROM products WHERE name = $1 FOR UPDATE`,
			o.OrderedItem,
		).Scan(&productID, &stock)
		if err != nil {
			return mapPgError(err, "CreateOrder", models.ErrProductNotFound, nil)
		}

		if stock < o.Quantity {
			return models.ErrInsufficientStock
		}

		if _, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2 WHERE id = $1`,
			productID, o.Quantity,
		); err != nil {
			return mapPgError(err, "CreateOrder", nil, nil)
		}

		query := `
			INSERT INTO orders (customer_id, ordered_item, quantity, total_cents, card_id, address, paid, paid_at, delivered, delivered_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at
		`

		err = tx.QueryRow(ctx, query,
			o.CustomerID, o.OrderedItem, o.Quantity, o.TotalCents,
			o.CardID, o.Address, o.Paid, o.PaidAt, o.Delivered, o.DeliveredAt,
		).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return mapPgError(err, "CreateOrder", models.ErrCustomerNotFound, nil)
		}

		return nil
	})
}

// GetOrder returns the order with the given id.
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o models.Order
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerID, &o.OrderedItem, &o.Quantity, &o.TotalCents,
		&o.CardID, &o.Address, &o.Paid, &o.PaidAt, &o.Delivered, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "GetOrder", models.ErrOrderNotFound, nil)
	}

	return &o, nil
}

// ListCustomerOrders returns a customer's orders, newest first.
// Returns models.ErrCustomerNotFound if the customer does not exist.
func (s *Store) ListCustomerOrders(ctx context.Context, customerID int64, limit, offset int) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Distinguish "no orders" from "no such customer".
	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, customerID, limit, offset)
	if err != nil {
		return nil, mapPgError(err, "ListCustomerOrders", nil, nil)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.OrderedItem, &o.Quantity, &o.TotalCents,
			&o.CardID, &o.Address, &o.Paid, &o.PaidAt, &o.Delivered, &o.DeliveredAt, &o.CreatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// MarkOrderPaid records payment for an order.
// Returns models.ErrOrderNotFound if the order does not exist.
func (s *Store) MarkOrderPaid(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := s.pool.Exec(ctx,
		`UPDATE orders SET paid = TRUE, paid_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return mapPgError(err, "MarkOrderPaid", nil, nil)
	}

	if result.RowsAffected() == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// MarkOrderDelivered records delivery for a paid order.
// Returns models.ErrOrderNotFound if the order does not exist.
func (s *Store) MarkOrderDelivered(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var paid bool
	err := s.pool.QueryRow(ctx, `SELECT paid FROM orders WHERE id = $1`, id).Scan(&paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrOrderNotFound
		}
		return mapPgError(err, "MarkOrderDelivered", nil, nil)
	}
	if !paid {
		return errors.New("order cannot be delivered before it is paid")
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE orders SET delivered = TRUE, delivered_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return mapPgError(err, "MarkOrderDelivered", nil, nil)
	}

	return nil
}
