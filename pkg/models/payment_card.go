package models

import (
	"fmt"
	"strings"
	"time"
)

// PaymentCard is a saved card reference for a customer.
//
// Only the payment provider's opaque card token is stored, never card
// numbers. The billing address columns mirror the legacy dataset so rows
// survive the v1 -> v2 import byte for byte.
type PaymentCard struct {
	CardID         string    `gorm:"primaryKey;size:64" json:"card_id"`
	CustomerID     int64     `gorm:"index;not null" json:"customer_id"`
	Email          string    `gorm:"size:255" json:"email,omitempty"`
	NameOnCard     string    `gorm:"size:255" json:"name_on_card,omitempty"`
	AddressCity    string    `gorm:"size:255" json:"address_city,omitempty"`
	AddressState   string    `gorm:"size:255" json:"address_state,omitempty"`
	AddressCountry string    `gorm:"size:255" json:"address_country,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for PaymentCard.
func (PaymentCard) TableName() string {
	return "payment_cards"
}

// Validate checks that the card row is well formed.
func (pc *PaymentCard) Validate() error {
	if strings.TrimSpace(pc.CardID) == "" {
		return fmt.Errorf("card id cannot be empty")
	}
	if pc.CustomerID <= 0 {
		return fmt.Errorf("card %s has no owning customer", pc.CardID)
	}
	return nil
}
