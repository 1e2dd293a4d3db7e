package catalog

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
)

type UseCase interface {
	RootCategories(ctx context.Context) ([]model.Category, error)
	Subcategories(ctx context.Context, parentID int64) ([]model.Category, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
	// ReindexAll rebuilds the product search index from the database.
	ReindexAll(ctx context.Context) error
}
