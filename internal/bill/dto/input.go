package dto

import (
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/shopspring/decimal"
)

type PayBillInput struct {
	Method     model.PaymentMethod `json:"method" validate:"required"`
	CashAmount decimal.Decimal     `json:"cash_amount"`
	CardAmount decimal.Decimal     `json:"card_amount"`
}

type AddBillItemInput struct {
	Name      string          `json:"name" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
