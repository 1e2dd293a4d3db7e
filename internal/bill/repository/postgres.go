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

func (r *PGRepository) Create(ctx context.Context, b *model.Bill) error {
	query := `
        INSERT INTO bills (
            table_id, table_name, sale_id, status,
            subtotal, tax, total, opened_at,
            created_at, updated_at, version
        )
        VALUES (
            :table_id, :table_name, :sale_id, :status,
            :subtotal, :tax, :total, :opened_at,
            :created_at, :updated_at, 1
        )
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, b)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&b.ID); err != nil {
			return err
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	b.Version = 1
	return r.writeItems(ctx, b)
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Bill, error) {
	var b model.Bill
	query := `SELECT * FROM bills WHERE id = $1 LIMIT 1`
	err := sqlx.GetContext(ctx, r.ext(ctx), &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) FindOpenByTable(ctx context.Context, tableID int64) (*model.Bill, error) {
	var b model.Bill
	query := `SELECT * FROM bills WHERE table_id = $1 AND status = 'OPEN' ORDER BY opened_at DESC LIMIT 1`
	err := sqlx.GetContext(ctx, r.ext(ctx), &b, query, tableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadItems(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) Update(ctx context.Context, b *model.Bill) error {
	query := `
        UPDATE bills SET
            status = :status,
            subtotal = :subtotal,
            tax = :tax,
            total = :total,
            payment_method = :payment_method,
            cash_amount = :cash_amount,
            card_amount = :card_amount,
            paid_at = :paid_at,
            updated_at = :updated_at,
            version = version + 1
        WHERE id = :id AND version = :version
    `
	res, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, b)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := r.FindByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("bill %d does not exist", b.ID)
		}
		return apperr.Conflict("bill %d was modified concurrently (version %d, stored %d)",
			b.ID, b.Version, existing.Version)
	}
	b.Version++

	if _, err := r.ext(ctx).ExecContext(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, b.ID); err != nil {
		return err
	}
	return r.writeItems(ctx, b)
}

func (r *PGRepository) writeItems(ctx context.Context, b *model.Bill) error {
	query := `
        INSERT INTO bill_items (bill_id, name, quantity, unit_price, total)
        VALUES (:bill_id, :name, :quantity, :unit_price, :total)
        RETURNING id
    `
	for i := range b.Items {
		b.Items[i].BillID = b.ID
		rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, b.Items[i])
		if err != nil {
			return err
		}
		if rows.Next() {
			if err := rows.Scan(&b.Items[i].ID); err != nil {
				rows.Close()
				return err
			}
		}
		rows.Close()
	}
	return nil
}

func (r *PGRepository) loadItems(ctx context.Context, b *model.Bill) error {
	query := `SELECT * FROM bill_items WHERE bill_id = $1 ORDER BY id`
	return sqlx.SelectContext(ctx, r.ext(ctx), &b.Items, query, b.ID)
}
