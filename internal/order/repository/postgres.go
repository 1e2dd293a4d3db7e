package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/order/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) ext(ctx context.Context) sqlx.ExtContext {
	return postgres.Executor(ctx, r.DB)
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (
            store_id, table_id, table_name, status, total,
            served_at, note, created_at, updated_at, version
        )
        VALUES (
            :store_id, :table_id, :table_name, :status, :total,
            :served_at, :note, :created_at, :updated_at, 1
        )
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, o)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&o.ID); err != nil {
			return err
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	o.Version = 1

	itemQuery := `
        INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total, note)
        VALUES (:order_id, :product_id, :product_name, :quantity, :unit_price, :total, :note)
        RETURNING id
    `
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		itemRows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), itemQuery, o.Items[i])
		if err != nil {
			return err
		}
		if itemRows.Next() {
			if err := itemRows.Scan(&o.Items[i].ID); err != nil {
				itemRows.Close()
				return err
			}
		}
		itemRows.Close()
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	query := `SELECT * FROM orders WHERE id = $1 LIMIT 1`
	err := sqlx.GetContext(ctx, r.ext(ctx), &o, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	query := `SELECT * FROM orders WHERE 1=1`
	args := map[string]interface{}{}

	if f.StoreID != 0 {
		query += " AND store_id = :store_id"
		args["store_id"] = f.StoreID
	}
	if f.TableID != 0 {
		query += " AND table_id = :table_id"
		args["table_id"] = f.TableID
	}
	if f.Status != "" {
		query += " AND status = :status"
		args["status"] = f.Status
	}
	if len(f.Statuses) > 0 {
		query += " AND status IN (:statuses)"
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		args["statuses"] = statuses
	}
	query += " ORDER BY created_at ASC"

	bound, bindArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, err
	}
	bound, bindArgs, err = sqlx.In(bound, bindArgs...)
	if err != nil {
		return nil, err
	}
	bound = r.DB.Rebind(bound)

	rows, err := r.ext(ctx).QueryxContext(ctx, bound, bindArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.StructScan(&o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PGRepository) Update(ctx context.Context, o *model.Order) error {
	query := `
        UPDATE orders SET
            status = :status,
            total = :total,
            served_at = :served_at,
            updated_at = :updated_at,
            version = version + 1
        WHERE id = :id AND version = :version
    `
	res, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, o)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := r.FindByID(ctx, o.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("order %d does not exist", o.ID)
		}
		return apperr.Conflict("order %d was modified concurrently (version %d, stored %d)",
			o.ID, o.Version, existing.Version)
	}
	o.Version++
	return nil
}

func (r *PGRepository) loadItems(ctx context.Context, o *model.Order) error {
	query := `SELECT * FROM order_items WHERE order_id = $1 ORDER BY id`
	return sqlx.SelectContext(ctx, r.ext(ctx), &o.Items, query, o.ID)
}
