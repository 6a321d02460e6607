package catalog

import (
	"context"

	"github.com/emporiumlabs/emporium/pkg/models"
)

const cardColumns = `card_id, customer_id, email, name_on_card, address_city, address_state, address_country, created_at`

// CreatePaymentCard stores a card token for a customer. The card id comes
// from the payment provider, so there is nothing to generate.
//
// Returns models.ErrDuplicateCard if the token is already stored and
// models.ErrCustomerNotFound if the owning customer does not exist.
func (s *Store) CreatePaymentCard(ctx context.Context, pc *models.PaymentCard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	query := `
		INSERT INTO payment_cards (card_id, customer_id, email, name_on_card, address_city, address_state, address_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := s.pool.QueryRow(ctx, query,
		pc.CardID, pc.CustomerID, pc.Email, pc.NameOnCard,
		pc.AddressCity, pc.AddressState, pc.AddressCountry,
	).Scan(&pc.CreatedAt)
	if err != nil {
		return mapPgError(err, "CreatePaymentCard", models.ErrCustomerNotFound, models.ErrDuplicateCard)
	}

	return nil
}

// GetPaymentCard returns the card stored under cardID.
func (s *Store) GetPaymentCard(ctx context.Context, cardID string) (*models.PaymentCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT ` + cardColumns + ` FROM payment_cards WHERE card_id = $1`

	var pc models.PaymentCard
	err := s.pool.QueryRow(ctx, query, cardID).Scan(
		&pc.CardID, &pc.CustomerID, &pc.Email, &pc.NameOnCard,
		&pc.AddressCity, &pc.AddressState, &pc.AddressCountry, &pc.CreatedAt,
	)
	if err != nil {
		return nil, mapPgError(err, "GetPaymentCard", models.ErrCardNotFound, nil)
	}

	return &pc, nil
}

// ListCustomerCards returns every card stored for a customer, oldest first.
func (s *Store) ListCustomerCards(ctx context.Context, customerID int64) ([]models.PaymentCard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := `SELECT ` + cardColumns + ` FROM payment_cards WHERE customer_id = $1 ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, mapPgError(err, "ListCustomerCards", nil, nil)
	}
	defer rows.Close()

	var cards []models.PaymentCard
	for rows.Next() {
		var pc models.PaymentCard
		if err := rows.Scan(
			&pc.CardID, &pc.CustomerID, &pc.Email, &pc.NameOnCard,
			&pc.AddressCity, &pc.AddressState, &pc.AddressCountry, &pc.CreatedAt,
		); err != nil {
			return nil, err
		}
		cards = append(cards, pc)
	}

	return cards, rows.Err()
}
