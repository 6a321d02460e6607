// Package models defines the storefront domain entities shared by the
// legacy reader, the catalog store, the seed snapshot, and the HTTP API.
//
// The same struct definitions describe rows in both storage generations:
// the embedded single-node database shipped with v1 deployments and the
// shared PostgreSQL schema used by the instance pool. GORM tags drive the
// legacy reader; the catalog store maps columns explicitly.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Product is a catalog item offered by the store.
type Product struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	Brand       string    `gorm:"size:255" json:"brand,omitempty"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `gorm:"not null" json:"price_cents"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	ImageURL    string    `gorm:"size:1024" json:"image_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Product.
func (Product) TableName() string {
	return "products"
}

// InStock reports whether the product can currently be ordered.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Price returns the price formatted as a decimal string (e.g. "19.99").
func (p *Product) Price() string {
	return fmt.Sprintf("%d.%02d", p.PriceCents/100, p.PriceCents%100)
}

// Validate checks that the product row is well formed.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("product price cannot be negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	return nil
}
