package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

const productColumns = `
    p.id, p.category_id, c.name AS category_name, p.name, p.sku,
    p.price, p.image_url, p.is_active, p.created_at, p.updated_at
`

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ext(ctx context.Context) sqlx.ExtContext {
	return postgres.Executor(ctx, r.DB)
}

func (r *PGRepository) FindCategories(ctx context.Context, parentID *int64) ([]model.Category, error) {
	categories := []model.Category{}
	if parentID == nil {
		query := `
            SELECT * FROM categories
            WHERE parent_id IS NULL AND is_active = true
            ORDER BY sort_order, name
        `
		if err := sqlx.SelectContext(ctx, r.ext(ctx), &categories, query); err != nil {
			return nil, err
		}
		return categories, nil
	}
	query := `
        SELECT * FROM categories
        WHERE parent_id = $1 AND is_active = true
        ORDER BY sort_order, name
    `
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &categories, query, *parentID); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *PGRepository) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	query := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.id = $1
        LIMIT 1
    `
	err := sqlx.GetContext(ctx, r.ext(ctx), &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) FindProductsByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	products := []model.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	query := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.id IN (?)
    `
	bound, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	bound = r.DB.Rebind(bound)
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &products, bound, args...); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) FindProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	products := []model.Product{}
	query := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.category_id = $1 AND p.is_active = true
        ORDER BY p.name
    `
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &products, query, categoryID); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) FindActiveProducts(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	query := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.is_active = true
        ORDER BY p.id
    `
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	products := []model.Product{}
	q := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN categories c ON c.id = p.category_id
        WHERE p.is_active = true
          AND (p.name ILIKE '%' || $1 || '%' OR p.sku ILIKE '%' || $1 || '%' OR c.name ILIKE '%' || $1 || '%')
        ORDER BY p.name
        LIMIT 50
    `
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &products, q, query); err != nil {
		return nil, err
	}
	return products, nil
}
