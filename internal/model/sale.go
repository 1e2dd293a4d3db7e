package model

import (
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusOpen      SaleStatus = "OPEN"
	SaleStatusPaid      SaleStatus = "PAID"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

type SaleItem struct {
	ID            int64           `db:"id" json:"id"`
	SaleID        int64           `db:"sale_id" json:"sale_id"`
	ProductID     int64           `db:"product_id" json:"product_id"`
	ProductName   string          `db:"product_name" json:"product_name"`
	ProductSKU    *string         `db:"product_sku" json:"product_sku,omitempty"`
	Quantity      int             `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price" json:"unit_price"`
	Discount      decimal.Decimal `db:"discount" json:"discount"`
	LineTotal     decimal.Decimal `db:"line_total" json:"line_total"`
	Note          *string         `db:"note" json:"note,omitempty"`
	SentToKitchen bool            `db:"sent_to_kitchen" json:"sent_to_kitchen"`
}

func (it *SaleItem) recompute() {
	it.LineTotal = LineTotal(it.Quantity, it.UnitPrice, it.Discount)
}

// Sale is the in-progress cart for one table visit. Each product appears in at
// most one line; repeated adds aggregate the quantity. All aggregation math
// lives here — no other layer recomputes line totals.
type Sale struct {
	BaseModel
	StoreID   int64           `db:"store_id" json:"store_id"`
	TableID   int64           `db:"table_id" json:"table_id"`
	TableName string          `db:"table_name" json:"table_name"`
	Status    SaleStatus      `db:"status" json:"status"`
	Items     []SaleItem      `db:"-" json:"items"`
	Subtotal  decimal.Decimal `db:"subtotal" json:"subtotal"`
	VATTotal  decimal.Decimal `db:"vat_total" json:"vat_total"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Version   int64           `db:"version" json:"version"`
}

func NewSale(storeID, tableID int64, tableName string, now time.Time) *Sale {
	return &Sale{
		BaseModel: BaseModel{CreatedAt: now, UpdatedAt: now},
		StoreID:   storeID,
		TableID:   tableID,
		TableName: tableName,
		Status:    SaleStatusOpen,
		Subtotal:  decimal.Zero,
		VATTotal:  decimal.Zero,
		Total:     decimal.Zero,
	}
}

func (s *Sale) mutable() error {
	if s.Status != SaleStatusOpen {
		return apperr.InvalidTransition("sale %d is %s and cannot be modified", s.ID, s.Status)
	}
	return nil
}

func (s *Sale) findItem(productID int64) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing line for the product or appends a
// new line with the product's current price snapshotted. A zero quantity is a
// no-op, not an error.
func (s *Sale) AddItem(product *Product, quantity int, now time.Time) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if quantity < 0 {
		return apperr.Validation("quantity must not be negative, got %d", quantity)
	}
	if quantity == 0 {
		return nil
	}

	if i := s.findItem(product.ID); i >= 0 {
		s.Items[i].Quantity += quantity
		s.Items[i].recompute()
	} else {
		item := SaleItem{
			SaleID:      s.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			Quantity:    quantity,
			UnitPrice:   product.Price,
			Discount:    decimal.Zero,
		}
		item.recompute()
		s.Items = append(s.Items, item)
	}
	s.recomputeTotals(now)
	return nil
}

// UpdateQuantity applies a delta. A resulting quantity of zero or below removes
// the line entirely; zero-quantity lines are never kept.
func (s *Sale) UpdateQuantity(productID int64, delta int, now time.Time) error {
	if err := s.mutable(); err != nil {
		return err
	}
	i := s.findItem(productID)
	if i < 0 {
		return apperr.NotFound("sale %d has no line for product %d", s.ID, productID)
	}

	newQuantity := s.Items[i].Quantity + delta
	if newQuantity <= 0 {
		s.Items = append(s.Items[:i], s.Items[i+1:]...)
	} else {
		s.Items[i].Quantity = newQuantity
		s.Items[i].recompute()
	}
	s.recomputeTotals(now)
	return nil
}

func (s *Sale) RemoveItem(productID int64, now time.Time) error {
	if err := s.mutable(); err != nil {
		return err
	}
	i := s.findItem(productID)
	if i < 0 {
		return apperr.NotFound("sale %d has no line for product %d", s.ID, productID)
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	s.recomputeTotals(now)
	return nil
}

func (s *Sale) SetItemNote(productID int64, note string, now time.Time) error {
	if err := s.mutable(); err != nil {
		return err
	}
	i := s.findItem(productID)
	if i < 0 {
		return apperr.NotFound("sale %d has no line for product %d", s.ID, productID)
	}
	if note == "" {
		s.Items[i].Note = nil
	} else {
		s.Items[i].Note = &note
	}
	s.UpdatedAt = now
	return nil
}

func (s *Sale) SetItemDiscount(productID int64, discount decimal.Decimal, now time.Time) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if discount.IsNegative() {
		return apperr.Validation("discount must not be negative")
	}
	i := s.findItem(productID)
	if i < 0 {
		return apperr.NotFound("sale %d has no line for product %d", s.ID, productID)
	}
	s.Items[i].Discount = discount
	s.Items[i].recompute()
	s.recomputeTotals(now)
	return nil
}

// UnsentItems returns the lines that have not yet been sent to the kitchen.
func (s *Sale) UnsentItems() []SaleItem {
	var unsent []SaleItem
	for _, it := range s.Items {
		if !it.SentToKitchen {
			unsent = append(unsent, it)
		}
	}
	return unsent
}

// MarkSentToKitchen flags every unsent line after an order has been created
// from them.
func (s *Sale) MarkSentToKitchen(now time.Time) error {
	if err := s.mutable(); err != nil {
		return err
	}
	for i := range s.Items {
		s.Items[i].SentToKitchen = true
	}
	s.UpdatedAt = now
	return nil
}

func (s *Sale) MarkPaid(now time.Time) error {
	if s.Status != SaleStatusOpen {
		return apperr.InvalidTransition("sale %d is already %s", s.ID, s.Status)
	}
	s.Status = SaleStatusPaid
	s.UpdatedAt = now
	return nil
}

func (s *Sale) MarkCancelled(now time.Time) error {
	if s.Status != SaleStatusOpen {
		return apperr.InvalidTransition("sale %d is already %s", s.ID, s.Status)
	}
	s.Status = SaleStatusCancelled
	s.UpdatedAt = now
	return nil
}

func (s *Sale) recomputeTotals(now time.Time) {
	subtotal := decimal.Zero
	for _, it := range s.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	s.Subtotal = subtotal
	s.VATTotal = VATOf(subtotal)
	s.Total = subtotal.Add(s.VATTotal)
	s.UpdatedAt = now
}
