package bill

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, bill *model.Bill) error
	FindByID(ctx context.Context, id int64) (*model.Bill, error)
	// FindOpenByTable returns the table's OPEN bill, or nil if none.
	FindOpenByTable(ctx context.Context, tableID int64) (*model.Bill, error)
	// Update applies an optimistic version check and rewrites the item lines.
	Update(ctx context.Context, bill *model.Bill) error
}
