package table

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
)

type UseCase interface {
	CreateTable(ctx context.Context, input *dto.CreateTableInput) (*model.Table, error)
	GetTable(ctx context.Context, id int64) (*model.Table, error)
	ListTables(ctx context.Context, filters *dto.TableFilters) ([]model.Table, error)
	UpdateTable(ctx context.Context, input *dto.UpdateTableInput) (*model.Table, error)
	SetStatus(ctx context.Context, id int64, status model.TableStatus) (*model.Table, error)
	OpenSale(ctx context.Context, tableID int64) (*model.Table, error)
	CloseSale(ctx context.Context, tableID int64) (*model.Table, error)
	DisableTable(ctx context.Context, id int64) (*model.Table, error)
	EnableTable(ctx context.Context, id int64) (*model.Table, error)
	Areas(ctx context.Context, storeID int64) ([]string, error)
	StatusCounts(ctx context.Context, storeID int64) (*dto.StatusCounts, error)
}
