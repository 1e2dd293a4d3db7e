package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/bill"
	"github.com/fekuna/omnipos-restaurant-service/internal/bill/dto"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/sale"
	"github.com/fekuna/omnipos-restaurant-service/internal/table"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/fekuna/omnipos-restaurant-service/pkg/postgres"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type billUseCase struct {
	repo      bill.Repository
	saleRepo  sale.Repository
	tableRepo table.Repository
	txm       postgres.TxManager
	publisher events.Publisher
	logger    logger.ZapLogger
	validate  *validator.Validate
}

func NewBillUseCase(
	repo bill.Repository,
	saleRepo sale.Repository,
	tableRepo table.Repository,
	txm postgres.TxManager,
	publisher events.Publisher,
	log logger.ZapLogger,
) bill.UseCase {
	return &billUseCase{
		repo:      repo,
		saleRepo:  saleRepo,
		tableRepo: tableRepo,
		txm:       txm,
		publisher: publisher,
		logger:    log,
		validate:  validator.New(),
	}
}

func (uc *billUseCase) OpenOrFetch(ctx context.Context, tableID int64) (*model.Bill, error) {
	existing, err := uc.repo.FindOpenByTable(ctx, tableID)
	if err != nil {
		return nil, apperr.Dependency(err, "load open bill for table %d", tableID)
	}
	if existing != nil {
		return existing, nil
	}

	t, err := uc.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		return nil, apperr.Dependency(err, "load table %d", tableID)
	}
	if t == nil {
		return nil, apperr.NotFound("table %d does not exist", tableID)
	}

	s, err := uc.saleRepo.FindOpenByTable(ctx, tableID)
	if err != nil {
		return nil, apperr.Dependency(err, "load open sale for table %d", tableID)
	}
	if s == nil {
		return nil, apperr.InvalidTransition("table %q has no open sale to bill", t.Name)
	}

	b := model.NewBillFromSale(s, t.Name, time.Now())
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, apperr.Dependency(err, "persist bill")
	}

	uc.notify(ctx, events.TypeBillUpdated, "bill", b.ID, b.Version)
	return b, nil
}

func (uc *billUseCase) GetBill(ctx context.Context, id int64) (*model.Bill, error) {
	return uc.load(ctx, id)
}

func (uc *billUseCase) AddItem(ctx context.Context, billID int64, input *dto.AddBillItemInput) (*model.Bill, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, apperr.Validation("invalid bill item: %v", err)
	}

	b, err := uc.load(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := b.AddItem(input.Name, input.Quantity, input.UnitPrice, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.update(ctx, b); err != nil {
		return nil, err
	}

	uc.notify(ctx, events.TypeBillUpdated, "bill", b.ID, b.Version)
	return b, nil
}

func (uc *billUseCase) Pay(ctx context.Context, billID int64, input *dto.PayBillInput) (*model.Bill, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, apperr.Validation("invalid payment input: %v", err)
	}

	return uc.settle(ctx, billID, func(b *model.Bill, now time.Time) error {
		return b.Pay(input.Method, input.CashAmount, input.CardAmount, now)
	})
}

func (uc *billUseCase) Cancel(ctx context.Context, billID int64) (*model.Bill, error) {
	return uc.settle(ctx, billID, func(b *model.Bill, now time.Time) error {
		return b.Cancel(now)
	})
}

// settle moves the bill to a terminal state and releases the owning table in
// one transaction. If closing the table fails the bill transition rolls back:
// the system never holds a PAID bill against an OCCUPIED table.
func (uc *billUseCase) settle(ctx context.Context, billID int64, fn func(*model.Bill, time.Time) error) (*model.Bill, error) {
	var (
		b *model.Bill
		t *model.Table
		s *model.Sale
	)
	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		b, err = uc.load(ctx, billID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := fn(b, now); err != nil {
			return err
		}
		if err := uc.update(ctx, b); err != nil {
			return err
		}

		s, err = uc.saleRepo.FindByID(ctx, b.SaleID)
		if err != nil {
			return apperr.Dependency(err, "load sale %d", b.SaleID)
		}
		if s != nil && s.Status == model.SaleStatusOpen {
			if b.Status == model.BillStatusPaid {
				err = s.MarkPaid(now)
			} else {
				err = s.MarkCancelled(now)
			}
			if err != nil {
				return err
			}
			if err := uc.saleRepo.Update(ctx, s); err != nil {
				if apperr.KindOf(err) != "" {
					return err
				}
				return apperr.Dependency(err, "persist sale %d", s.ID)
			}
		}

		t, err = uc.tableRepo.FindByID(ctx, b.TableID)
		if err != nil {
			return apperr.Dependency(err, "load table %d", b.TableID)
		}
		if t != nil && t.Status == model.TableStatusOccupied {
			if err := t.CloseSale(now); err != nil {
				return err
			}
			if err := uc.tableRepo.Update(ctx, t); err != nil {
				if apperr.KindOf(err) != "" {
					return err
				}
				return apperr.Dependency(err, "persist table %d", t.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, events.TypeBillUpdated, "bill", b.ID, b.Version)
	if s != nil {
		uc.notify(ctx, events.TypeSaleUpdated, "sale", s.ID, s.Version)
	}
	if t != nil {
		uc.notify(ctx, events.TypeTableUpdated, "table", t.ID, t.Version)
	}
	return b, nil
}

func (uc *billUseCase) load(ctx context.Context, id int64) (*model.Bill, error) {
	b, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency(err, "load bill %d", id)
	}
	if b == nil {
		return nil, apperr.NotFound("bill %d does not exist", id)
	}
	return b, nil
}

func (uc *billUseCase) update(ctx context.Context, b *model.Bill) error {
	err := uc.repo.Update(ctx, b)
	if err == nil || apperr.KindOf(err) != "" {
		return err
	}
	return apperr.Dependency(err, "persist bill %d", b.ID)
}

func (uc *billUseCase) notify(ctx context.Context, eventType, entity string, id, version int64) {
	err := uc.publisher.Publish(ctx, events.EntityChanged{
		EventType: eventType,
		Entity:    entity,
		EntityID:  id,
		Version:   version,
	})
	if err != nil {
		uc.logger.Warn("failed to publish bill event", zap.Int64("entity_id", id), zap.Error(err))
	}
}
