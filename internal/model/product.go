package model

import "github.com/shopspring/decimal"

// Product is read-mostly catalog reference data. The cart snapshots its price
// at add time, so later catalog edits never reach open sales.
type Product struct {
	BaseModel
	CategoryID   int64           `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name,omitempty"` // joined
	Name         string          `db:"name" json:"name"`
	SKU          *string         `db:"sku" json:"sku,omitempty"`
	Price        decimal.Decimal `db:"price" json:"price"`
	ImageURL     *string         `db:"image_url" json:"image_url,omitempty"`
	IsActive     bool            `db:"is_active" json:"is_active"`
}
