package dto

import "github.com/shopspring/decimal"

type AddItemInput struct {
	ProductID int64 `json:"product_id" validate:"required"`
	// Quantity defaults to 1 when omitted; zero is an explicit no-op.
	Quantity *int `json:"quantity" validate:"omitempty,min=0"`
}

type UpdateQuantityInput struct {
	Delta int `json:"delta" validate:"required"`
}

type ItemNoteInput struct {
	Note string `json:"note"`
}

type ItemDiscountInput struct {
	Discount decimal.Decimal `json:"discount"`
}
