package models

import (
	"fmt"
	"time"
)

// Order is a placed storefront order.
//
// OrderedItem is denormalized (the product name at purchase time) so
// historical orders stay meaningful when the catalog changes. CardID
// references the saved card used for payment, when one was used.
type Order struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID  int64      `gorm:"index;not null" json:"customer_id"`
	OrderedItem string     `gorm:"not null;size:255" json:"ordered_item"`
	Quantity    int        `gorm:"not null;default:1" json:"quantity"`
	TotalCents  int64      `gorm:"not null" json:"total_cents"`
	CardID      string     `gorm:"size:64" json:"card_id,omitempty"`
	Address     string     `gorm:"size:1024" json:"address,omitempty"`
	Paid        bool       `gorm:"default:false" json:"paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Delivered   bool       `gorm:"default:false" json:"delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Order.
func (Order) TableName() string {
	return "orders"
}

// Validate checks that the order row is well formed.
func (o *Order) Validate() error {
	if o.CustomerID <= 0 {
		return fmt.Errorf("order has no owning customer")
	}
	if o.OrderedItem == "" {
		return fmt.Errorf("order has no item")
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order quantity must be positive")
	}
	if o.TotalCents < 0 {
		return fmt.Errorf("order total cannot be negative")
	}
	if o.Delivered && !o.Paid {
		return fmt.Errorf("order cannot be delivered before it is paid")
	}
	return nil
}
