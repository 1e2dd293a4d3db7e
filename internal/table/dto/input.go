package dto

import "github.com/fekuna/omnipos-restaurant-service/internal/model"

type CreateTableInput struct {
	StoreID int64             `json:"store_id" validate:"required"`
	Name    string            `json:"name" validate:"required"`
	Area    string            `json:"area"`
	Seats   int               `json:"seats" validate:"required,min=1"`
	Status  model.TableStatus `json:"status"`
}

// UpdateTableInput merges partial fields; nil leaves a field unchanged.
type UpdateTableInput struct {
	ID     int64              `json:"-"`
	Name   *string            `json:"name"`
	Area   *string            `json:"area"`
	Seats  *int               `json:"seats"`
	Status *model.TableStatus `json:"status"`
}
