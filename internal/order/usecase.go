package order

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	AdvanceOrder(ctx context.Context, id int64) (*model.Order, error)
	SetStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, id int64) (*model.Order, error)
	KitchenQueue(ctx context.Context, storeID int64) (*dto.KitchenQueue, error)
}
