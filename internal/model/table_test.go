package model

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, status TableStatus) *Table {
	t.Helper()
	tbl, err := NewTable(1, "Table 4", "Terrace", 4, status, time.Now())
	require.NoError(t, err)
	tbl.ID = 4
	return tbl
}

func TestNewTable_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewTable(1, "", "Hall", 4, TableStatusFree, now)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = NewTable(1, "Table 1", "Hall", 0, TableStatusFree, now)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = NewTable(1, "Table 1", "Hall", 4, TableStatusOccupied, now)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	tbl, err := NewTable(1, "Table 1", "Hall", 4, "", now)
	require.NoError(t, err)
	assert.Equal(t, TableStatusFree, tbl.Status)
}

func TestTable_OpenCloseCycle(t *testing.T) {
	tbl := newTestTable(t, TableStatusFree)
	now := time.Now()

	require.NoError(t, tbl.OpenSale(123, now))
	assert.Equal(t, TableStatusOccupied, tbl.Status)
	require.NotNil(t, tbl.CurrentSaleID)
	assert.Equal(t, int64(123), *tbl.CurrentSaleID)
	assert.NotNil(t, tbl.OpenedAt)

	require.NoError(t, tbl.CloseSale(now))
	assert.Equal(t, TableStatusFree, tbl.Status)
	assert.Nil(t, tbl.CurrentSaleID)
	assert.Nil(t, tbl.CurrentSaleTotal)
	assert.Nil(t, tbl.OpenedAt)
}

func TestTable_OpenSale_Transitions(t *testing.T) {
	now := time.Now()

	tests := []struct {
		status TableStatus
		ok     bool
	}{
		{TableStatusFree, true},
		{TableStatusReserved, true},
		{TableStatusOccupied, false},
		{TableStatusDisabled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			tbl := newTestTable(t, TableStatusFree)
			tbl.Status = tt.status
			err := tbl.OpenSale(1, now)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
			}
		})
	}
}

func TestTable_CloseSale_RequiresOccupied(t *testing.T) {
	tbl := newTestTable(t, TableStatusFree)
	err := tbl.CloseSale(time.Now())
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestTable_DisableGuard(t *testing.T) {
	tbl := newTestTable(t, TableStatusFree)
	now := time.Now()
	require.NoError(t, tbl.OpenSale(55, now))

	err := tbl.Disable(now)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Equal(t, TableStatusOccupied, tbl.Status, "failed disable must not change the table")
	assert.NotNil(t, tbl.CurrentSaleID)
}

func TestTable_DisableEnable(t *testing.T) {
	tbl := newTestTable(t, TableStatusReserved)
	now := time.Now()

	require.NoError(t, tbl.Disable(now))
	assert.Equal(t, TableStatusDisabled, tbl.Status)

	err := tbl.Disable(now)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	require.NoError(t, tbl.Enable(now))
	assert.Equal(t, TableStatusFree, tbl.Status)

	err = tbl.Enable(now)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestTable_ChangeStatus(t *testing.T) {
	now := time.Now()

	t.Run("free to reserved and back", func(t *testing.T) {
		tbl := newTestTable(t, TableStatusFree)
		require.NoError(t, tbl.ChangeStatus(TableStatusReserved, now))
		require.NoError(t, tbl.ChangeStatus(TableStatusFree, now))
	})

	t.Run("occupied cannot be entered by edit", func(t *testing.T) {
		tbl := newTestTable(t, TableStatusFree)
		err := tbl.ChangeStatus(TableStatusOccupied, now)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	})

	t.Run("status edit is rejected while a sale is open", func(t *testing.T) {
		tbl := newTestTable(t, TableStatusFree)
		require.NoError(t, tbl.OpenSale(9, now))
		err := tbl.ChangeStatus(TableStatusFree, now)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	})

	t.Run("disabled is managed by disable and enable", func(t *testing.T) {
		tbl := newTestTable(t, TableStatusFree)
		err := tbl.ChangeStatus(TableStatusDisabled, now)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	})
}

func TestTable_OccupiedMatchesSaleRef(t *testing.T) {
	// status == OCCUPIED ⇔ CurrentSaleID != nil, across a full lifecycle.
	tbl := newTestTable(t, TableStatusFree)
	now := time.Now()

	check := func() {
		t.Helper()
		assert.Equal(t, tbl.Status == TableStatusOccupied, tbl.CurrentSaleID != nil)
	}

	check()
	require.NoError(t, tbl.OpenSale(7, now))
	check()
	require.NoError(t, tbl.SetSaleTotal(decimal.RequireFromString("45.80"), now))
	check()
	require.NoError(t, tbl.CloseSale(now))
	check()
	require.NoError(t, tbl.ChangeStatus(TableStatusReserved, now))
	check()
	require.NoError(t, tbl.Disable(now))
	check()
}

func TestTable_ApplyEdit(t *testing.T) {
	tbl := newTestTable(t, TableStatusFree)
	now := time.Now()

	name := "Table 4 VIP"
	seats := 6
	require.NoError(t, tbl.ApplyEdit(&name, nil, &seats, nil, now))
	assert.Equal(t, "Table 4 VIP", tbl.Name)
	assert.Equal(t, 6, tbl.Seats)
	assert.Equal(t, "Terrace", tbl.Area, "unset fields stay unchanged")

	badSeats := 0
	err := tbl.ApplyEdit(nil, nil, &badSeats, nil, now)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	empty := ""
	err = tbl.ApplyEdit(&empty, nil, nil, nil, now)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
