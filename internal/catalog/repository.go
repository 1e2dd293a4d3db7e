package catalog

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
)

// Repository reads the product catalog. The floor service never writes it;
// editorial tooling lives elsewhere.
type Repository interface {
	FindCategories(ctx context.Context, parentID *int64) ([]model.Category, error)
	FindProductByID(ctx context.Context, id int64) (*model.Product, error)
	FindProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
	FindProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
	FindActiveProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
}
