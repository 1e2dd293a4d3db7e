package model

import (
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusServed     OrderStatus = "SERVED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderStages ranks the preparation pipeline. Transitions may only move to a
// strictly later stage; CANCELLED is reachable from any non-terminal state.
var orderStages = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusInProgress: 1,
	OrderStatusReady:      2,
	OrderStatusServed:     3,
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := orderStages[s]
	return ok
}

type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Note        *string         `db:"note" json:"note,omitempty"`
}

// Order is a kitchen-facing unit of work derived from a cart. Its total is
// always the sum of its line totals and its status only moves forward.
type Order struct {
	BaseModel
	StoreID   int64           `db:"store_id" json:"store_id"`
	TableID   int64           `db:"table_id" json:"table_id"`
	TableName string          `db:"table_name" json:"table_name"`
	Status    OrderStatus     `db:"status" json:"status"`
	Items     []OrderItem     `db:"-" json:"items"`
	Total     decimal.Decimal `db:"total" json:"total"`
	ServedAt  *time.Time      `db:"served_at" json:"served_at,omitempty"`
	Note      *string         `db:"note" json:"note,omitempty"`
	Version   int64           `db:"version" json:"version"`
}

func NewOrder(storeID, tableID int64, tableName string, items []OrderItem, note *string, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}
	for i := range items {
		if items[i].Quantity <= 0 {
			return nil, apperr.Validation("item %q has non-positive quantity %d", items[i].ProductName, items[i].Quantity)
		}
		items[i].Total = LineTotal(items[i].Quantity, items[i].UnitPrice, decimal.Zero)
	}

	o := &Order{
		BaseModel: BaseModel{CreatedAt: now, UpdatedAt: now},
		StoreID:   storeID,
		TableID:   tableID,
		TableName: tableName,
		Status:    OrderStatusPending,
		Items:     items,
		Note:      note,
	}
	o.recomputeTotal()
	return o, nil
}

func (o *Order) recomputeTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Total)
	}
	o.Total = total
}

func (o *Order) Terminal() bool {
	return o.Status == OrderStatusServed || o.Status == OrderStatusCancelled
}

func (o *Order) CanTransitionTo(target OrderStatus) bool {
	if o.Terminal() {
		return false
	}
	if target == OrderStatusCancelled {
		return true
	}
	rank, ok := orderStages[target]
	if !ok {
		return false
	}
	return rank > orderStages[o.Status]
}

// TransitionTo moves the order to target if the forward-only graph allows it.
func (o *Order) TransitionTo(target OrderStatus, now time.Time) error {
	if !target.Valid() {
		return apperr.Validation("unknown order status %q", target)
	}
	if !o.CanTransitionTo(target) {
		return apperr.InvalidTransition("order %d cannot move from %s to %s", o.ID, o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = now
	if target == OrderStatusServed {
		o.ServedAt = &now
	}
	return nil
}

// Advance performs the single deterministic forward step.
func (o *Order) Advance(now time.Time) error {
	var next OrderStatus
	switch o.Status {
	case OrderStatusPending:
		next = OrderStatusInProgress
	case OrderStatusInProgress:
		next = OrderStatusReady
	case OrderStatusReady:
		next = OrderStatusServed
	default:
		return apperr.InvalidTransition("order %d is %s and cannot advance", o.ID, o.Status)
	}
	return o.TransitionTo(next, now)
}

func (o *Order) Cancel(now time.Time) error {
	if o.Terminal() {
		return apperr.InvalidTransition("order %d is already %s", o.ID, o.Status)
	}
	return o.TransitionTo(OrderStatusCancelled, now)
}
