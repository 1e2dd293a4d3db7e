package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/catalog"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/order"
	"github.com/fekuna/omnipos-restaurant-service/internal/sale"
	"github.com/fekuna/omnipos-restaurant-service/internal/table"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/fekuna/omnipos-restaurant-service/pkg/postgres"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type saleUseCase struct {
	repo      sale.Repository
	tableRepo table.Repository
	orderRepo order.Repository
	catalog   catalog.Repository
	txm       postgres.TxManager
	publisher events.Publisher
	logger    logger.ZapLogger
}

func NewSaleUseCase(
	repo sale.Repository,
	tableRepo table.Repository,
	orderRepo order.Repository,
	catalogRepo catalog.Repository,
	txm postgres.TxManager,
	publisher events.Publisher,
	log logger.ZapLogger,
) sale.UseCase {
	return &saleUseCase{
		repo:      repo,
		tableRepo: tableRepo,
		orderRepo: orderRepo,
		catalog:   catalogRepo,
		txm:       txm,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *saleUseCase) GetSale(ctx context.Context, id int64) (*model.Sale, error) {
	return uc.load(ctx, id)
}

func (uc *saleUseCase) GetOpenByTable(ctx context.Context, tableID int64) (*model.Sale, error) {
	s, err := uc.repo.FindOpenByTable(ctx, tableID)
	if err != nil {
		return nil, apperr.Dependency(err, "load open sale for table %d", tableID)
	}
	if s == nil {
		return nil, apperr.NotFound("table %d has no open sale", tableID)
	}
	return s, nil
}

func (uc *saleUseCase) AddItem(ctx context.Context, saleID, productID int64, quantity int) (*model.Sale, error) {
	p, err := uc.catalog.FindProductByID(ctx, productID)
	if err != nil {
		return nil, apperr.Dependency(err, "load product %d", productID)
	}
	if p == nil {
		return nil, apperr.NotFound("product %d does not exist", productID)
	}

	return uc.mutate(ctx, saleID, func(s *model.Sale, now time.Time) error {
		return s.AddItem(p, quantity, now)
	})
}

func (uc *saleUseCase) UpdateQuantity(ctx context.Context, saleID, productID int64, delta int) (*model.Sale, error) {
	return uc.mutate(ctx, saleID, func(s *model.Sale, now time.Time) error {
		return s.UpdateQuantity(productID, delta, now)
	})
}

func (uc *saleUseCase) RemoveItem(ctx context.Context, saleID, productID int64) (*model.Sale, error) {
	return uc.mutate(ctx, saleID, func(s *model.Sale, now time.Time) error {
		return s.RemoveItem(productID, now)
	})
}

func (uc *saleUseCase) SetItemNote(ctx context.Context, saleID, productID int64, note string) (*model.Sale, error) {
	return uc.mutate(ctx, saleID, func(s *model.Sale, now time.Time) error {
		return s.SetItemNote(productID, note, now)
	})
}

func (uc *saleUseCase) SetItemDiscount(ctx context.Context, saleID, productID int64, discount decimal.Decimal) (*model.Sale, error) {
	return uc.mutate(ctx, saleID, func(s *model.Sale, now time.Time) error {
		return s.SetItemDiscount(productID, discount, now)
	})
}

// SendToKitchen turns the sale's unsent lines into a PENDING order and flags
// them, all in one transaction.
func (uc *saleUseCase) SendToKitchen(ctx context.Context, saleID int64) (*model.Order, error) {
	var (
		o *model.Order
		s *model.Sale
	)
	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		s, err = uc.load(ctx, saleID)
		if err != nil {
			return err
		}

		unsent := s.UnsentItems()
		if len(unsent) == 0 {
			return apperr.Validation("sale %d has no new items to send to the kitchen", saleID)
		}

		now := time.Now()
		items := make([]model.OrderItem, 0, len(unsent))
		for _, it := range unsent {
			items = append(items, model.OrderItem{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				Note:        it.Note,
			})
		}

		o, err = model.NewOrder(s.StoreID, s.TableID, s.TableName, items, nil, now)
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(ctx, o); err != nil {
			return apperr.Dependency(err, "persist order")
		}

		if err := s.MarkSentToKitchen(now); err != nil {
			return err
		}
		return uc.update(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, events.TypeOrderCreated, "order", o.ID, o.Version)
	uc.notify(ctx, events.TypeSaleUpdated, "sale", s.ID, s.Version)
	return o, nil
}

func (uc *saleUseCase) load(ctx context.Context, id int64) (*model.Sale, error) {
	s, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency(err, "load sale %d", id)
	}
	if s == nil {
		return nil, apperr.NotFound("sale %d does not exist", id)
	}
	return s, nil
}

// mutate applies a cart mutation and refreshes the owning table's running
// total in the same transaction, so the floor map never shows a stale amount.
func (uc *saleUseCase) mutate(ctx context.Context, saleID int64, fn func(*model.Sale, time.Time) error) (*model.Sale, error) {
	var s *model.Sale
	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		s, err = uc.load(ctx, saleID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := fn(s, now); err != nil {
			return err
		}
		if err := uc.update(ctx, s); err != nil {
			return err
		}
		return uc.refreshTableTotal(ctx, s, now)
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, events.TypeSaleUpdated, "sale", s.ID, s.Version)
	return s, nil
}

func (uc *saleUseCase) refreshTableTotal(ctx context.Context, s *model.Sale, now time.Time) error {
	t, err := uc.tableRepo.FindByID(ctx, s.TableID)
	if err != nil {
		return apperr.Dependency(err, "load table %d", s.TableID)
	}
	if t == nil || t.CurrentSaleID == nil || *t.CurrentSaleID != s.ID {
		return nil
	}
	if err := t.SetSaleTotal(s.Total, now); err != nil {
		return err
	}
	if err := uc.tableRepo.Update(ctx, t); err != nil {
		if apperr.KindOf(err) != "" {
			return err
		}
		return apperr.Dependency(err, "persist table %d", t.ID)
	}
	return nil
}

func (uc *saleUseCase) update(ctx context.Context, s *model.Sale) error {
	err := uc.repo.Update(ctx, s)
	if err == nil || apperr.KindOf(err) != "" {
		return err
	}
	return apperr.Dependency(err, "persist sale %d", s.ID)
}

func (uc *saleUseCase) notify(ctx context.Context, eventType, entity string, id, version int64) {
	err := uc.publisher.Publish(ctx, events.EntityChanged{
		EventType: eventType,
		Entity:    entity,
		EntityID:  id,
		Version:   version,
	})
	if err != nil {
		uc.logger.Warn("failed to publish sale event", zap.Int64("entity_id", id), zap.Error(err))
	}
}
