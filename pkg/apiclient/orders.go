package apiclient

import "time"

// Order represents a placed storefront order.
type Order struct {
	ID          int64      `json:"id"`
	CustomerID  int64      `json:"customer_id"`
	OrderedItem string     `json:"ordered_item"`
	Quantity    int        `json:"quantity"`
	TotalCents  int64      `json:"total_cents"`
	CardID      string     `json:"card_id,omitempty"`
	Address     string     `json:"address,omitempty"`
	Paid        bool       `json:"paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Delivered   bool       `json:"delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

// GetOrder returns a single order by id.
func (c *Client) GetOrder(id int64) (*Order, error) {
	return getResource[Order](c, resourcePath("/api/v1/orders/%d", id))
}
