package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/catalog"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/order"
	"github.com/fekuna/omnipos-restaurant-service/internal/order/dto"
	"github.com/fekuna/omnipos-restaurant-service/internal/table"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo      order.Repository
	tableRepo table.Repository
	catalog   catalog.Repository
	publisher events.Publisher
	logger    logger.ZapLogger
	validate  *validator.Validate
}

func NewOrderUseCase(
	repo order.Repository,
	tableRepo table.Repository,
	catalogRepo catalog.Repository,
	publisher events.Publisher,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		tableRepo: tableRepo,
		catalog:   catalogRepo,
		publisher: publisher,
		logger:    log,
		validate:  validator.New(),
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, apperr.Validation("invalid order input: %v", err)
	}

	t, err := uc.tableRepo.FindByID(ctx, input.TableID)
	if err != nil {
		return nil, apperr.Dependency(err, "load table %d", input.TableID)
	}
	if t == nil {
		return nil, apperr.NotFound("table %d does not exist", input.TableID)
	}

	ids := make([]int64, 0, len(input.Items))
	for _, it := range input.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := uc.catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Dependency(err, "load products for order")
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]model.OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, apperr.NotFound("product %d does not exist", it.ProductID)
		}
		item := model.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		}
		if it.Note != "" {
			note := it.Note
			item.Note = &note
		}
		items = append(items, item)
	}

	var note *string
	if input.Note != "" {
		note = &input.Note
	}

	o, err := model.NewOrder(t.StoreID, t.ID, t.Name, items, note, time.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, apperr.Dependency(err, "persist order")
	}

	uc.notify(ctx, events.TypeOrderCreated, o.ID, o.Version)
	return o, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return uc.load(ctx, id)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error) {
	orders, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperr.Dependency(err, "list orders")
	}
	return orders, nil
}

func (uc *orderUseCase) AdvanceOrder(ctx context.Context, id int64) (*model.Order, error) {
	return uc.mutate(ctx, id, func(o *model.Order, now time.Time) error {
		return o.Advance(now)
	})
}

func (uc *orderUseCase) SetStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	return uc.mutate(ctx, id, func(o *model.Order, now time.Time) error {
		return o.TransitionTo(status, now)
	})
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, id int64) (*model.Order, error) {
	return uc.mutate(ctx, id, func(o *model.Order, now time.Time) error {
		return o.Cancel(now)
	})
}

// KitchenQueue returns active orders grouped by stage, oldest first within
// each group, so the longest-waiting ticket is always on top.
func (uc *orderUseCase) KitchenQueue(ctx context.Context, storeID int64) (*dto.KitchenQueue, error) {
	orders, err := uc.repo.FindAll(ctx, &dto.OrderFilters{
		StoreID: storeID,
		Statuses: []model.OrderStatus{
			model.OrderStatusPending,
			model.OrderStatusInProgress,
			model.OrderStatusReady,
		},
	})
	if err != nil {
		return nil, apperr.Dependency(err, "list kitchen orders")
	}

	queue := &dto.KitchenQueue{}
	for _, o := range orders {
		switch o.Status {
		case model.OrderStatusPending:
			queue.Pending = append(queue.Pending, o)
		case model.OrderStatusInProgress:
			queue.InProgress = append(queue.InProgress, o)
		case model.OrderStatusReady:
			queue.Ready = append(queue.Ready, o)
		}
	}
	return queue, nil
}

func (uc *orderUseCase) load(ctx context.Context, id int64) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency(err, "load order %d", id)
	}
	if o == nil {
		return nil, apperr.NotFound("order %d does not exist", id)
	}
	return o, nil
}

func (uc *orderUseCase) mutate(ctx context.Context, id int64, fn func(*model.Order, time.Time) error) (*model.Order, error) {
	o, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(o, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, o); err != nil {
		if apperr.KindOf(err) != "" {
			return nil, err
		}
		return nil, apperr.Dependency(err, "persist order %d", id)
	}

	uc.notify(ctx, events.TypeOrderUpdated, o.ID, o.Version)
	return o, nil
}

func (uc *orderUseCase) notify(ctx context.Context, eventType string, id, version int64) {
	err := uc.publisher.Publish(ctx, events.EntityChanged{
		EventType: eventType,
		Entity:    "order",
		EntityID:  id,
		Version:   version,
	})
	if err != nil {
		uc.logger.Warn("failed to publish order event", zap.Int64("order_id", id), zap.Error(err))
	}
}
