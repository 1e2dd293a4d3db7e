package model

import (
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/shopspring/decimal"
)

type TableStatus string

const (
	TableStatusFree     TableStatus = "FREE"
	TableStatusOccupied TableStatus = "OCCUPIED"
	TableStatusReserved TableStatus = "RESERVED"
	TableStatusDisabled TableStatus = "DISABLED"
)

func (s TableStatus) Valid() bool {
	switch s {
	case TableStatusFree, TableStatusOccupied, TableStatusReserved, TableStatusDisabled:
		return true
	}
	return false
}

// Table is a physical seating unit. Its status and its link to the currently
// open sale are owned exclusively by this type: OCCUPIED is entered only by
// OpenSale and left only by CloseSale, so the invariant
// status == OCCUPIED ⇔ CurrentSaleID != nil holds at every boundary.
type Table struct {
	BaseModel
	StoreID          int64            `db:"store_id" json:"store_id"`
	Name             string           `db:"name" json:"name"`
	Area             string           `db:"area" json:"area"`
	Seats            int              `db:"seats" json:"seats"`
	Status           TableStatus      `db:"status" json:"status"`
	CurrentSaleID    *int64           `db:"current_sale_id" json:"current_sale_id"`
	CurrentSaleTotal *decimal.Decimal `db:"current_sale_total" json:"current_sale_total"`
	OpenedAt         *time.Time       `db:"opened_at" json:"opened_at"`
	Version          int64            `db:"version" json:"version"`
}

func NewTable(storeID int64, name, area string, seats int, status TableStatus, now time.Time) (*Table, error) {
	if name == "" {
		return nil, apperr.Validation("table name is required")
	}
	if seats < 1 {
		return nil, apperr.Validation("table must have at least one seat, got %d", seats)
	}
	if status == "" {
		status = TableStatusFree
	}
	if !status.Valid() {
		return nil, apperr.Validation("unknown table status %q", status)
	}
	if status == TableStatusOccupied {
		return nil, apperr.Validation("a table cannot be created occupied; open a sale instead")
	}

	return &Table{
		BaseModel: BaseModel{CreatedAt: now, UpdatedAt: now},
		StoreID:   storeID,
		Name:      name,
		Area:      area,
		Seats:     seats,
		Status:    status,
	}, nil
}

// OpenSale attaches an open sale and moves the table to OCCUPIED.
func (t *Table) OpenSale(saleID int64, now time.Time) error {
	if t.Status != TableStatusFree && t.Status != TableStatusReserved {
		return apperr.InvalidTransition("cannot open a sale on table %q while it is %s", t.Name, t.Status)
	}
	t.Status = TableStatusOccupied
	t.CurrentSaleID = &saleID
	t.OpenedAt = &now
	t.UpdatedAt = now
	return nil
}

// CloseSale releases the table back to FREE and clears the sale link.
func (t *Table) CloseSale(now time.Time) error {
	if t.Status != TableStatusOccupied {
		return apperr.InvalidTransition("table %q has no open sale to close", t.Name)
	}
	t.Status = TableStatusFree
	t.CurrentSaleID = nil
	t.CurrentSaleTotal = nil
	t.OpenedAt = nil
	t.UpdatedAt = now
	return nil
}

// SetSaleTotal refreshes the denormalized running total shown on the floor map.
func (t *Table) SetSaleTotal(total decimal.Decimal, now time.Time) error {
	if t.Status != TableStatusOccupied {
		return apperr.InvalidTransition("table %q has no open sale", t.Name)
	}
	t.CurrentSaleTotal = &total
	t.UpdatedAt = now
	return nil
}

func (t *Table) Disable(now time.Time) error {
	if t.Status == TableStatusOccupied {
		return apperr.InvalidTransition("close the open sale on table %q before disabling it", t.Name)
	}
	if t.Status == TableStatusDisabled {
		return apperr.InvalidTransition("table %q is already disabled", t.Name)
	}
	t.Status = TableStatusDisabled
	t.UpdatedAt = now
	return nil
}

func (t *Table) Enable(now time.Time) error {
	if t.Status != TableStatusDisabled {
		return apperr.InvalidTransition("table %q is not disabled", t.Name)
	}
	t.Status = TableStatusFree
	t.UpdatedAt = now
	return nil
}

// ChangeStatus is the admin FREE ⇄ RESERVED toggle. OCCUPIED and DISABLED are
// entered through their dedicated operations only.
func (t *Table) ChangeStatus(status TableStatus, now time.Time) error {
	if !status.Valid() {
		return apperr.Validation("unknown table status %q", status)
	}
	if status == t.Status {
		return nil
	}
	if t.CurrentSaleID != nil {
		return apperr.InvalidTransition("table %q has an open sale; close it instead of editing the status", t.Name)
	}
	if status == TableStatusOccupied {
		return apperr.InvalidTransition("OCCUPIED is entered by opening a sale, not by edit")
	}
	if status == TableStatusDisabled || t.Status == TableStatusDisabled {
		return apperr.InvalidTransition("use disable/enable to change the DISABLED state of table %q", t.Name)
	}
	t.Status = status
	t.UpdatedAt = now
	return nil
}

// ApplyEdit merges the provided fields. Nil means "leave unchanged".
func (t *Table) ApplyEdit(name, area *string, seats *int, status *TableStatus, now time.Time) error {
	if name != nil {
		if *name == "" {
			return apperr.Validation("table name is required")
		}
		t.Name = *name
	}
	if area != nil {
		t.Area = *area
	}
	if seats != nil {
		if *seats < 1 {
			return apperr.Validation("table must have at least one seat, got %d", *seats)
		}
		t.Seats = *seats
	}
	if status != nil {
		if err := t.ChangeStatus(*status, now); err != nil {
			return err
		}
	}
	t.UpdatedAt = now
	return nil
}
