package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// Customer represents a registered storefront account.
type Customer struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	City      string    `json:"city,omitempty"`
	State     string    `json:"state,omitempty"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// GetCustomer returns a single customer by id.
func (c *Client) GetCustomer(id int64) (*Customer, error) {
	return getResource[Customer](c, resourcePath("/api/v1/customers/%d", id))
}

// ListCustomerOrders returns the orders placed by a customer, newest first.
// Zero limit and offset use the server defaults.
func (c *Client) ListCustomerOrders(customerID int64, limit, offset int) ([]Order, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	path := resourcePath("/api/v1/customers/%d/orders", customerID)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return listResources[Order](c, path)
}
