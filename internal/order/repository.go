package order

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/order/dto"
)

type Repository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id int64) (*model.Order, error)
	// FindAll returns matching orders oldest-first.
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	// Update persists the status fields with an optimistic version check.
	// Items are immutable after creation and are not rewritten.
	Update(ctx context.Context, order *model.Order) error
}
