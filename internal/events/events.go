package events

import (
	"context"
	"time"
)

// Event types emitted on the restaurant events topic. External collaborators
// (kitchen displays, floor dashboards) subscribe instead of polling; the core
// stays pull-based.
const (
	TypeTableUpdated = "TableUpdated"
	TypeOrderCreated = "OrderCreated"
	TypeOrderUpdated = "OrderUpdated"
	TypeSaleUpdated  = "SaleUpdated"
	TypeBillUpdated  = "BillUpdated"
)

// EntityChanged is the envelope for every successful mutation.
type EntityChanged struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher delivers entity-change events. Publish failures are logged by the
// caller and never fail the mutation itself.
type Publisher interface {
	Publish(ctx context.Context, event EntityChanged) error
}

// NopPublisher discards events; used in tests and when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event EntityChanged) error { return nil }
