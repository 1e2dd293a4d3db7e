package model

import (
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillStatusOpen      BillStatus = "OPEN"
	BillStatusPaid      BillStatus = "PAID"
	BillStatusCancelled BillStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "CASH"
	PaymentMethodCard  PaymentMethod = "CARD"
	PaymentMethodSplit PaymentMethod = "SPLIT"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodSplit:
		return true
	}
	return false
}

type BillItem struct {
	ID        int64           `db:"id" json:"id"`
	BillID    int64           `db:"bill_id" json:"bill_id"`
	Name      string          `db:"name" json:"name"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Total     decimal.Decimal `db:"total" json:"total"`
}

// Bill is the settlement record for one table visit. Subtotal, tax and total
// are always recomputed from the items, never stored independently of them.
type Bill struct {
	BaseModel
	TableID       int64            `db:"table_id" json:"table_id"`
	TableName     string           `db:"table_name" json:"table_name"`
	SaleID        int64            `db:"sale_id" json:"sale_id"`
	Items         []BillItem       `db:"-" json:"items"`
	Subtotal      decimal.Decimal  `db:"subtotal" json:"subtotal"`
	Tax           decimal.Decimal  `db:"tax" json:"tax"`
	Total         decimal.Decimal  `db:"total" json:"total"`
	Status        BillStatus       `db:"status" json:"status"`
	OpenedAt      time.Time        `db:"opened_at" json:"opened_at"`
	PaymentMethod *PaymentMethod   `db:"payment_method" json:"payment_method,omitempty"`
	CashAmount    *decimal.Decimal `db:"cash_amount" json:"cash_amount,omitempty"`
	CardAmount    *decimal.Decimal `db:"card_amount" json:"card_amount,omitempty"`
	PaidAt        *time.Time       `db:"paid_at" json:"paid_at,omitempty"`
	Version       int64            `db:"version" json:"version"`
}

// NewBillFromSale snapshots the sale's current lines into a settlement record.
func NewBillFromSale(sale *Sale, tableName string, now time.Time) *Bill {
	b := &Bill{
		BaseModel: BaseModel{CreatedAt: now, UpdatedAt: now},
		TableID:   sale.TableID,
		TableName: tableName,
		SaleID:    sale.ID,
		Status:    BillStatusOpen,
		OpenedAt:  now,
	}
	for _, it := range sale.Items {
		b.Items = append(b.Items, BillItem{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.LineTotal,
		})
	}
	b.recompute()
	return b
}

func (b *Bill) recompute() {
	subtotal := decimal.Zero
	for _, it := range b.Items {
		subtotal = subtotal.Add(it.Total)
	}
	b.Subtotal = subtotal
	b.Tax = VATOf(subtotal)
	b.Total = subtotal.Add(b.Tax)
}

func (b *Bill) Terminal() bool {
	return b.Status == BillStatusPaid || b.Status == BillStatusCancelled
}

// AddItem appends a settled line while the bill is still open.
func (b *Bill) AddItem(name string, quantity int, unitPrice decimal.Decimal, now time.Time) error {
	if b.Terminal() {
		return apperr.InvalidTransition("bill %d is %s and cannot be modified", b.ID, b.Status)
	}
	if quantity <= 0 {
		return apperr.Validation("item quantity must be positive, got %d", quantity)
	}
	b.Items = append(b.Items, BillItem{
		BillID:    b.ID,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Total:     LineTotal(quantity, unitPrice, decimal.Zero),
	})
	b.recompute()
	b.UpdatedAt = now
	return nil
}

// Pay settles the bill. CASH and CARD charge the full total to the chosen
// rail; SPLIT requires cash + card to cover the total within SplitTolerance.
// On any error the bill is left untouched.
func (b *Bill) Pay(method PaymentMethod, cashAmount, cardAmount decimal.Decimal, now time.Time) error {
	if b.Terminal() {
		return apperr.InvalidTransition("bill %d is already %s", b.ID, b.Status)
	}
	if !method.Valid() {
		return apperr.Validation("unknown payment method %q", method)
	}

	var cash, card decimal.Decimal
	switch method {
	case PaymentMethodCash:
		cash = b.Total
	case PaymentMethodCard:
		card = b.Total
	case PaymentMethodSplit:
		diff := cashAmount.Add(cardAmount).Sub(b.Total).Abs()
		if diff.GreaterThanOrEqual(SplitTolerance) {
			return apperr.Validation("split amounts must sum to total: %s + %s != %s",
				cashAmount.StringFixed(2), cardAmount.StringFixed(2), b.Total.StringFixed(2))
		}
		cash, card = cashAmount, cardAmount
	}

	b.Status = BillStatusPaid
	b.PaymentMethod = &method
	b.CashAmount = &cash
	b.CardAmount = &card
	b.PaidAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Bill) Cancel(now time.Time) error {
	if b.Terminal() {
		return apperr.InvalidTransition("bill %d is already %s", b.ID, b.Status)
	}
	b.Status = BillStatusCancelled
	b.UpdatedAt = now
	return nil
}
