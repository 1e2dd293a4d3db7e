package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
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

func (r *PGRepository) Create(ctx context.Context, t *model.Table) error {
	query := `
        INSERT INTO restaurant_tables (
            store_id, name, area, seats, status,
            current_sale_id, current_sale_total, opened_at,
            created_at, updated_at, version
        )
        VALUES (
            :store_id, :name, :area, :seats, :status,
            :current_sale_id, :current_sale_total, :opened_at,
            :created_at, :updated_at, 1
        )
        RETURNING id
    `
	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, t)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&t.ID); err != nil {
			return err
		}
	}
	t.Version = 1
	return rows.Err()
}

func (r *PGRepository) FindByID(ctx context.Context, id int64) (*model.Table, error) {
	var t model.Table
	query := `SELECT * FROM restaurant_tables WHERE id = $1 LIMIT 1`
	err := sqlx.GetContext(ctx, r.ext(ctx), &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.TableFilters) ([]model.Table, error) {
	query := `SELECT * FROM restaurant_tables WHERE store_id = :store_id`
	args := map[string]interface{}{"store_id": f.StoreID}

	if f.Area != "" {
		query += " AND area = :area"
		args["area"] = f.Area
	}
	if f.Status != "" {
		query += " AND status = :status"
		args["status"] = f.Status
	}
	query += " ORDER BY name"

	rows, err := sqlx.NamedQueryContext(ctx, r.ext(ctx), query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []model.Table
	for rows.Next() {
		var t model.Table
		if err := rows.StructScan(&t); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, t *model.Table) error {
	query := `
        UPDATE restaurant_tables SET
            name = :name,
            area = :area,
            seats = :seats,
            status = :status,
            current_sale_id = :current_sale_id,
            current_sale_total = :current_sale_total,
            opened_at = :opened_at,
            updated_at = :updated_at,
            version = version + 1
        WHERE id = :id AND version = :version
    `
	res, err := sqlx.NamedExecContext(ctx, r.ext(ctx), query, t)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := r.FindByID(ctx, t.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return apperr.NotFound("table %d does not exist", t.ID)
		}
		return apperr.Conflict("table %d was modified concurrently (version %d, stored %d)",
			t.ID, t.Version, existing.Version)
	}
	t.Version++
	return nil
}

func (r *PGRepository) Areas(ctx context.Context, storeID int64) ([]string, error) {
	var areas []string
	query := `SELECT DISTINCT area FROM restaurant_tables WHERE store_id = $1 AND area <> '' ORDER BY area`
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &areas, query, storeID); err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *PGRepository) CountByStatus(ctx context.Context, storeID int64) (*dto.StatusCounts, error) {
	query := `SELECT status, count(*) AS count FROM restaurant_tables WHERE store_id = $1 GROUP BY status`
	rows, err := r.ext(ctx).QueryxContext(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := &dto.StatusCounts{}
	for rows.Next() {
		var status model.TableStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		switch status {
		case model.TableStatusFree:
			counts.Free = count
		case model.TableStatusOccupied:
			counts.Occupied = count
		case model.TableStatusReserved:
			counts.Reserved = count
		case model.TableStatusDisabled:
			counts.Disabled = count
		}
	}
	return counts, rows.Err()
}
