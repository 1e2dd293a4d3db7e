package table

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
)

type Repository interface {
	Create(ctx context.Context, table *model.Table) error
	FindByID(ctx context.Context, id int64) (*model.Table, error)
	FindAll(ctx context.Context, filters *dto.TableFilters) ([]model.Table, error)
	// Update applies an optimistic version check: the row is written only if
	// the stored version matches, and the version is incremented on success.
	Update(ctx context.Context, table *model.Table) error
	Areas(ctx context.Context, storeID int64) ([]string, error)
	CountByStatus(ctx context.Context, storeID int64) (*dto.StatusCounts, error)
}
