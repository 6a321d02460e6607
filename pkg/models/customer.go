package models

import (
	"fmt"
	"strings"
	"time"
)

// Customer is a registered storefront account.
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	FullName  string    `gorm:"size:255" json:"full_name,omitempty"`
	City      string    `gorm:"size:255" json:"city,omitempty"`
	State     string    `gorm:"size:255" json:"state,omitempty"`
	Country   string    `gorm:"size:255" json:"country,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Customer.
func (Customer) TableName() string {
	return "customers"
}

// Validate checks that the customer row is well formed.
func (c *Customer) Validate() error {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return fmt.Errorf("customer email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("customer email %q is not an email address", c.Email)
	}
	return nil
}
