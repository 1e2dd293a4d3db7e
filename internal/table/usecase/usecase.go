package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/sale"
	"github.com/fekuna/omnipos-restaurant-service/internal/table"
	"github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/fekuna/omnipos-restaurant-service/pkg/postgres"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type tableUseCase struct {
	repo      table.Repository
	saleRepo  sale.Repository
	txm       postgres.TxManager
	publisher events.Publisher
	logger    logger.ZapLogger
	validate  *validator.Validate
}

func NewTableUseCase(
	repo table.Repository,
	saleRepo sale.Repository,
	txm postgres.TxManager,
	publisher events.Publisher,
	log logger.ZapLogger,
) table.UseCase {
	return &tableUseCase{
		repo:      repo,
		saleRepo:  saleRepo,
		txm:       txm,
		publisher: publisher,
		logger:    log,
		validate:  validator.New(),
	}
}

func (uc *tableUseCase) CreateTable(ctx context.Context, input *dto.CreateTableInput) (*model.Table, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, apperr.Validation("invalid table input: %v", err)
	}

	t, err := model.NewTable(input.StoreID, input.Name, input.Area, input.Seats, input.Status, time.Now())
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, t); err != nil {
		return nil, apperr.Dependency(err, "persist table")
	}

	uc.notify(ctx, events.TypeTableUpdated, t.ID, t.Version)
	return t, nil
}

func (uc *tableUseCase) GetTable(ctx context.Context, id int64) (*model.Table, error) {
	return uc.load(ctx, id)
}

func (uc *tableUseCase) ListTables(ctx context.Context, filters *dto.TableFilters) ([]model.Table, error) {
	tables, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, apperr.Dependency(err, "list tables")
	}
	return tables, nil
}

func (uc *tableUseCase) UpdateTable(ctx context.Context, input *dto.UpdateTableInput) (*model.Table, error) {
	return uc.mutate(ctx, input.ID, func(t *model.Table, now time.Time) error {
		return t.ApplyEdit(input.Name, input.Area, input.Seats, input.Status, now)
	})
}

func (uc *tableUseCase) SetStatus(ctx context.Context, id int64, status model.TableStatus) (*model.Table, error) {
	return uc.mutate(ctx, id, func(t *model.Table, now time.Time) error {
		return t.ChangeStatus(status, now)
	})
}

// OpenSale occupies the table, reusing the table's existing OPEN sale if one
// exists, otherwise opening a fresh one. Sale creation and table update are one
// transaction.
func (uc *tableUseCase) OpenSale(ctx context.Context, tableID int64) (*model.Table, error) {
	var t *model.Table
	err := uc.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = uc.load(ctx, tableID)
		if err != nil {
			return err
		}

		s, err := uc.saleRepo.FindOpenByTable(ctx, tableID)
		if err != nil {
			return apperr.Dependency(err, "load open sale for table %d", tableID)
		}

		now := time.Now()
		if s == nil {
			s = model.NewSale(t.StoreID, t.ID, t.Name, now)
			if err := uc.saleRepo.Create(ctx, s); err != nil {
				return apperr.Dependency(err, "persist sale")
			}
		}

		if err := t.OpenSale(s.ID, now); err != nil {
			return err
		}
		if !s.Total.IsZero() {
			if err := t.SetSaleTotal(s.Total, now); err != nil {
				return err
			}
		}
		return uc.update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	uc.notify(ctx, events.TypeTableUpdated, t.ID, t.Version)
	return t, nil
}

func (uc *tableUseCase) CloseSale(ctx context.Context, tableID int64) (*model.Table, error) {
	return uc.mutate(ctx, tableID, func(t *model.Table, now time.Time) error {
		return t.CloseSale(now)
	})
}

func (uc *tableUseCase) DisableTable(ctx context.Context, id int64) (*model.Table, error) {
	return uc.mutate(ctx, id, func(t *model.Table, now time.Time) error {
		return t.Disable(now)
	})
}

func (uc *tableUseCase) EnableTable(ctx context.Context, id int64) (*model.Table, error) {
	return uc.mutate(ctx, id, func(t *model.Table, now time.Time) error {
		return t.Enable(now)
	})
}

func (uc *tableUseCase) Areas(ctx context.Context, storeID int64) ([]string, error) {
	areas, err := uc.repo.Areas(ctx, storeID)
	if err != nil {
		return nil, apperr.Dependency(err, "list areas")
	}
	return areas, nil
}

func (uc *tableUseCase) StatusCounts(ctx context.Context, storeID int64) (*dto.StatusCounts, error) {
	counts, err := uc.repo.CountByStatus(ctx, storeID)
	if err != nil {
		return nil, apperr.Dependency(err, "count tables by status")
	}
	return counts, nil
}

func (uc *tableUseCase) load(ctx context.Context, id int64) (*model.Table, error) {
	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency(err, "load table %d", id)
	}
	if t == nil {
		return nil, apperr.NotFound("table %d does not exist", id)
	}
	return t, nil
}

// mutate runs a read-modify-write cycle; the repository's version check turns
// a lost race into a Conflict instead of a silent last-writer-wins.
func (uc *tableUseCase) mutate(ctx context.Context, id int64, fn func(*model.Table, time.Time) error) (*model.Table, error) {
	t, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(t, time.Now()); err != nil {
		return nil, err
	}
	if err := uc.update(ctx, t); err != nil {
		return nil, err
	}

	uc.notify(ctx, events.TypeTableUpdated, t.ID, t.Version)
	return t, nil
}

func (uc *tableUseCase) update(ctx context.Context, t *model.Table) error {
	err := uc.repo.Update(ctx, t)
	if err == nil || apperr.KindOf(err) != "" {
		return err
	}
	return apperr.Dependency(err, "persist table %d", t.ID)
}

func (uc *tableUseCase) notify(ctx context.Context, eventType string, id, version int64) {
	err := uc.publisher.Publish(ctx, events.EntityChanged{
		EventType: eventType,
		Entity:    "table",
		EntityID:  id,
		Version:   version,
	})
	if err != nil {
		uc.logger.Warn("failed to publish table event", zap.Int64("table_id", id), zap.Error(err))
	}
}
