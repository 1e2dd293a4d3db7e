package dto

import "github.com/fekuna/omnipos-restaurant-service/internal/model"

type TableFilters struct {
	StoreID int64
	Area    string
	Status  model.TableStatus
}

// StatusCounts feeds the floor dashboard header.
type StatusCounts struct {
	Free     int `json:"free"`
	Occupied int `json:"occupied"`
	Reserved int `json:"reserved"`
	Disabled int `json:"disabled"`
}
