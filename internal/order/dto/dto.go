package dto

import "github.com/fekuna/omnipos-restaurant-service/internal/model"

type OrderFilters struct {
	StoreID  int64
	Status   model.OrderStatus
	TableID  int64
	Statuses []model.OrderStatus
}

// KitchenQueue groups active orders for the kitchen display. Each group is
// ordered oldest-first so the longest-waiting order surfaces on top; READY is
// kept apart from the in-flight groups so finished work is never re-queued.
type KitchenQueue struct {
	Pending    []model.Order `json:"pending"`
	InProgress []model.Order `json:"in_progress"`
	Ready      []model.Order `json:"ready"`
}
