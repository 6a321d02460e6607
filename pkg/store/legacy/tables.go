package legacy

import (
	"context"
	"fmt"

	"github.com/emporiumlabs/emporium/pkg/models"
)

// Products returns every product ordered by ID.
func (s *Store) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to read legacy products: %w", err)
	}
	return products, nil
}

// Customers returns every customer ordered by ID.
func (s *Store) Customers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to read legacy customers: %w", err)
	}
	return customers, nil
}

// PaymentCards returns every payment card ordered by card ID.
func (s *Store) PaymentCards(ctx context.Context) ([]models.PaymentCard, error) {
	var cards []models.PaymentCard
	if err := s.db.WithContext(ctx).Order("card_id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to read legacy payment cards: %w", err)
	}
	return cards, nil
}

// Orders returns every order ordered by ID.
func (s *Store) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to read legacy orders: %w", err)
	}
	return orders, nil
}

// Counts returns the number of rows in each tracked table, keyed by
// table name.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	tables := []struct {
		name  string
		model any
	}{
		{models.Product{}.TableName(), &models.Product{}},
		{models.Customer{}.TableName(), &models.Customer{}},
		{models.PaymentCard{}.TableName(), &models.PaymentCard{}},
		{models.Order{}.TableName(), &models.Order{}},
	}

	counts := make(map[string]int64, len(tables))
	for _, t := range tables {
		var n int64
		if err := s.db.WithContext(ctx).Model(t.model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to count legacy %s: %w", t.name, err)
		}
		counts[t.name] = n
	}
	return counts, nil
}

// CreateProduct inserts a product. Fixture provisioning only.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrDuplicateProduct
		}
		return fmt.Errorf("failed to create legacy product: %w", err)
	}
	return nil
}

// CreateCustomer inserts a customer. Fixture provisioning only.
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrDuplicateCustomer
		}
		return fmt.Errorf("failed to create legacy customer: %w", err)
	}
	return nil
}

// CreatePaymentCard inserts a payment card. Fixture provisioning only.
func (s *Store) CreatePaymentCard(ctx context.Context, card *models.PaymentCard) error {
	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.ErrDuplicateCard
		}
		return fmt.Errorf("failed to create legacy payment card: %w", err)
	}
	return nil
}

// CreateOrder inserts an order. Fixture provisioning only.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create legacy order: %w", err)
	}
	return nil
}

// GetCustomerByEmail looks up a customer by email address.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrCustomerNotFound)
	}
	return &customer, nil
}
