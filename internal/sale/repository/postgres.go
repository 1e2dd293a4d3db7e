package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
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

func (r *PGRepository) Create(ctx context.Context, s *model.Sale) error {
	query := `
        INSERT INTO sales (
            store_id, table_id, table_name, status,
            subtotal, vat_total, total,
            created_at, updated_at, version
        )
        VALUES (
            :store_id, :table_id, :table_name, :status,
            :subtotal, :vat_total, :total,
            :created_at, :updated_at, 1
        )
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, s)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&s.ID); err != nil {
			return err
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	s.Version = 1
	return r.writeItems(ctx, s)
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Sale, error) {
	var s model.Sale
	query := `SELECT * FROM sales WHERE id = $1 LIMIT 1`
	err := sqlx.GetContext(ctx, r.ext(ctx), &s, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) FindOpenByTable(ctx context.Context, tableID int64) (*model.Sale, error) {
	var s model.Sale
	query := `SELECT * FROM sales WHERE table_id = $1 AND status = 'OPEN' ORDER BY created_at DESC LIMIT 1`
	err := sqlx.GetContext(ctx, r.ext(ctx), &s, query, tableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Update(ctx context.Context, s *model.Sale) error {
	query := `
        UPDATE sales SET
            status = :status,
            subtotal = :subtotal,
            vat_total = :vat_total,
            total = :total,
            updated_at = :updated_at,
            version = version + 1
        WHERE id = :id AND version = :version
    `
	res, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, s)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := r.FindByID(ctx, s.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("sale %d does not exist", s.ID)
		}
		return apperr.Conflict("sale %d was modified concurrently (version %d, stored %d)",
			s.ID, s.Version, existing.Version)
	}
	s.Version++

	// Line set mutations (merge, remove, resend flags) are simplest to persist
	// as a rewrite; the version check above already serializes writers.
	if _, err := r.ext(ctx).ExecContext(ctx, `DELETE FROM sale_items WHERE sale_id = $1`, s.ID); err != nil {
		return err
	}
	return r.writeItems(ctx, s)
}

func (r *PGRepository) writeItems(ctx context.Context, s *model.Sale) error {
	query := `
        INSERT INTO sale_items (
            sale_id, product_id, product_name, product_sku,
            quantity, unit_price, discount, line_total, note, sent_to_kitchen
        )
        VALUES (
            :sale_id, :product_id, :product_name, :product_sku,
            :quantity, :unit_price, :discount, :line_total, :note, :sent_to_kitchen
        )
        RETURNING id
    `
	for i := range s.Items {
		s.Items[i].SaleID = s.ID
		rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, s.Items[i])
		if err != nil {
			return err
		}
		if rows.Next() {
			if err := rows.Scan(&s.Items[i].ID); err != nil {
				rows.Close()
				return err
			}
		}
		rows.Close()
	}
	return nil
}

func (r *PGRepository) loadItems(ctx context.Context, s *model.Sale) error {
	query := `SELECT * FROM sale_items WHERE sale_id = $1 ORDER BY id`
	return sqlx.SelectContext(ctx, r.ext(ctx), &s.Items, query, s.ID)
}
