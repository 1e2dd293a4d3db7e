package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/catalog"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/pkg/cache"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/fekuna/omnipos-restaurant-service/pkg/search"
	"go.uber.org/zap"
)

const (
	productsIndex = "products"
	cacheTTL      = 5 * time.Minute
)

// catalogUseCase serves menu lookups for the floor. Results are cached in
// redis because the catalog changes far less often than it is read; free-text
// search goes through elasticsearch with a plain DB scan as fallback.
type catalogUseCase struct {
	repo   catalog.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewCatalogUseCase(repo catalog.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *catalogUseCase) RootCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if uc.cacheGet(ctx, "catalog:categories:root", &out) {
		return out, nil
	}
	out, err := uc.repo.FindCategories(ctx, nil)
	if err != nil {
		return nil, apperr.Dependency(err, "list root categories")
	}
	uc.cacheSet(ctx, "catalog:categories:root", out)
	return out, nil
}

func (uc *catalogUseCase) Subcategories(ctx context.Context, parentID int64) ([]model.Category, error) {
	key := fmt.Sprintf("catalog:categories:%d", parentID)
	var out []model.Category
	if uc.cacheGet(ctx, key, &out) {
		return out, nil
	}
	out, err := uc.repo.FindCategories(ctx, &parentID)
	if err != nil {
		return nil, apperr.Dependency(err, "list subcategories of %d", parentID)
	}
	uc.cacheSet(ctx, key, out)
	return out, nil
}

func (uc *catalogUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := uc.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, apperr.Dependency(err, "load product %d", id)
	}
	if p == nil {
		return nil, apperr.NotFound("product %d does not exist", id)
	}
	return p, nil
}

func (uc *catalogUseCase) ProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	key := fmt.Sprintf("catalog:products:category:%d", categoryID)
	var out []model.Product
	if uc.cacheGet(ctx, key, &out) {
		return out, nil
	}
	out, err := uc.repo.FindProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperr.Dependency(err, "list products in category %d", categoryID)
	}
	uc.cacheSet(ctx, key, out)
	return out, nil
}

func (uc *catalogUseCase) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	if query == "" {
		return nil, apperr.Validation("search query must not be empty")
	}

	if uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []map[string]interface{}{
						{
							"query_string": map[string]interface{}{
								"query":  fmt.Sprintf("*%s*", query),
								"fields": []string{"name^3", "sku", "category_name"},
							},
						},
						{
							"term": map[string]interface{}{"is_active": true},
						},
					},
				},
			},
		}
		res, err := uc.es.Search(ctx, productsIndex, q)
		if err == nil {
			var products []model.Product
			for _, hit := range res.Hits.Hits {
				var p model.Product
				if err := json.Unmarshal(hit.Source, &p); err == nil {
					products = append(products, p)
				}
			}
			return products, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, err := uc.repo.SearchProducts(ctx, query)
	if err != nil {
		return nil, apperr.Dependency(err, "search products")
	}
	return products, nil
}

const productsMapping = `{
    "mappings": {
        "properties": {
            "name": { "type": "text" },
            "sku": { "type": "keyword" },
            "category_name": { "type": "text" },
            "price": { "type": "double" },
            "is_active": { "type": "boolean" }
        }
    }
}`

func (uc *catalogUseCase) ReindexAll(ctx context.Context) error {
	if uc.es == nil {
		return nil
	}
	if err := uc.es.CreateIndex(ctx, productsIndex, productsMapping); err != nil {
		return apperr.Dependency(err, "create products index")
	}
	products, err := uc.repo.FindActiveProducts(ctx)
	if err != nil {
		return apperr.Dependency(err, "load products for indexing")
	}
	for i := range products {
		id := strconv.FormatInt(products[i].ID, 10)
		if err := uc.es.Index(ctx, productsIndex, id, products[i]); err != nil {
			return apperr.Dependency(err, "index product %s", id)
		}
	}
	uc.logger.Info("product search index rebuilt", zap.Int("products", len(products)))
	return nil
}

func (uc *catalogUseCase) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if uc.cache == nil {
		return false
	}
	val, err := uc.cache.Client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

func (uc *catalogUseCase) cacheSet(ctx context.Context, key string, v interface{}) {
	if uc.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := uc.cache.Client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		uc.logger.Warn("failed to cache catalog response", zap.String("key", key), zap.Error(err))
	}
}
