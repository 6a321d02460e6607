package seed

import (
	"context"
	"fmt"

	"github.com/emporiumlabs/emporium/pkg/models"
)

// Source supplies the rows for a snapshot export. The legacy store
// implements it; tests substitute fakes.
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
	Customers(ctx context.Context) ([]models.Customer, error)
	PaymentCards(ctx context.Context) ([]models.PaymentCard, error)
	Orders(ctx context.Context) ([]models.Order, error)

	// Location describes where the rows came from, recorded in the
	// snapshot for auditing.
	Location() string
}

// Build exports every tracked table from src into a snapshot.
//
// The snapshot is checksummed but not yet verified; callers that are
// about to import it should call Verify first.
func Build(ctx context.Context, src Source) (*Snapshot, error) {
	products, err := src.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export products: %w", err)
	}

	customers, err := src.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export customers: %w", err)
	}

	cards, err := src.PaymentCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export payment cards: %w", err)
	}

	orders, err := src.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export orders: %w", err)
	}

	snap, err := New(src.Location(), Tables{
		Products:     products,
		Customers:    customers,
		PaymentCards: cards,
		Orders:       orders,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to checksum snapshot: %w", err)
	}

	return snap, nil
}
