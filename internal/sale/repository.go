package sale

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindByID(ctx context.Context, id int64) (*model.Sale, error)
	// FindOpenByTable returns the table's single OPEN sale, or nil if none.
	FindOpenByTable(ctx context.Context, tableID int64) (*model.Sale, error)
	// Update applies an optimistic version check and rewrites the item lines.
	Update(ctx context.Context, sale *model.Sale) error
}
