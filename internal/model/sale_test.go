package model

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productA() *Product {
	sku := "PZ-001"
	return &Product{
		BaseModel: BaseModel{ID: 101},
		Name:      "Margherita",
		SKU:       &sku,
		Price:     decimal.RequireFromString("12.50"),
	}
}

func productB() *Product {
	return &Product{
		BaseModel: BaseModel{ID: 102},
		Name:      "Cola",
		Price:     decimal.RequireFromString("3.00"),
	}
}

func newTestSale() *Sale {
	s := NewSale(1, 4, "Table 4", time.Now())
	s.ID = 1
	return s
}

func TestSale_AddItemAggregates(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 1, now))
	require.Len(t, s.Items, 1)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("12.50")), "got %s", s.Subtotal)

	// Adding the same product again merges into the existing line.
	require.NoError(t, s.AddItem(productA(), 1, now))
	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("25.00")), "got %s", s.Subtotal)

	require.NoError(t, s.AddItem(productB(), 3, now))
	require.Len(t, s.Items, 2)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("34.00")), "got %s", s.Subtotal)
}

func TestSale_AddItemZeroIsNoop(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 0, now))
	assert.Empty(t, s.Items)
	assert.True(t, s.Subtotal.IsZero())

	require.NoError(t, s.AddItem(productA(), 2, now))
	require.NoError(t, s.AddItem(productA(), 0, now))
	assert.Equal(t, 2, s.Items[0].Quantity)
}

func TestSale_AddItemNegativeQuantity(t *testing.T) {
	s := newTestSale()
	err := s.AddItem(productA(), -1, time.Now())
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSale_PriceSnapshot(t *testing.T) {
	s := newTestSale()
	now := time.Now()
	p := productA()

	require.NoError(t, s.AddItem(p, 1, now))

	// A later catalog price change must not reach the open cart.
	p.Price = decimal.RequireFromString("99.99")
	require.NoError(t, s.AddItem(p, 1, now))

	assert.True(t, s.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("25.00")), "got %s", s.Subtotal)
}

func TestSale_UpdateQuantityRoundTrip(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 1, now))
	require.NoError(t, s.UpdateQuantity(101, 3, now))
	assert.Equal(t, 4, s.Items[0].Quantity)

	// Bringing the quantity back to zero removes the line, never keeping a
	// zero-quantity entry.
	require.NoError(t, s.UpdateQuantity(101, -3, now))
	require.Len(t, s.Items, 1)
	require.NoError(t, s.UpdateQuantity(101, -1, now))
	assert.Empty(t, s.Items)
	assert.True(t, s.Subtotal.IsZero())
}

func TestSale_UpdateQuantityBelowZeroRemoves(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 2, now))
	require.NoError(t, s.UpdateQuantity(101, -5, now))
	assert.Empty(t, s.Items)
}

func TestSale_UpdateQuantityNotFound(t *testing.T) {
	s := newTestSale()
	err := s.UpdateQuantity(999, 1, time.Now())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSale_RemoveItem(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 2, now))
	require.NoError(t, s.RemoveItem(101, now))
	assert.Empty(t, s.Items)

	err := s.RemoveItem(101, now)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSale_SetItemDiscount(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 2, now))
	require.NoError(t, s.SetItemDiscount(101, decimal.RequireFromString("5.00"), now))
	assert.True(t, s.Items[0].LineTotal.Equal(decimal.RequireFromString("20.00")), "got %s", s.Items[0].LineTotal)
	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("20.00")))

	// A discount larger than the gross floors the line at zero.
	require.NoError(t, s.SetItemDiscount(101, decimal.RequireFromString("100.00"), now))
	assert.True(t, s.Items[0].LineTotal.IsZero())

	err := s.SetItemDiscount(101, decimal.RequireFromString("-1.00"), now)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSale_SetItemNote(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 1, now))
	require.NoError(t, s.SetItemNote(101, "no basil", now))
	require.NotNil(t, s.Items[0].Note)
	assert.Equal(t, "no basil", *s.Items[0].Note)

	require.NoError(t, s.SetItemNote(101, "", now))
	assert.Nil(t, s.Items[0].Note)

	err := s.SetItemNote(999, "x", now)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSale_Totals(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 2, now)) // 25.00
	require.NoError(t, s.AddItem(productB(), 3, now)) // 9.00

	assert.True(t, s.Subtotal.Equal(decimal.RequireFromString("34.00")), "got %s", s.Subtotal)
	assert.True(t, s.VATTotal.Equal(decimal.RequireFromString("6.80")), "got %s", s.VATTotal)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("40.80")), "got %s", s.Total)
}

func TestSale_SendToKitchenFlags(t *testing.T) {
	s := newTestSale()
	now := time.Now()

	require.NoError(t, s.AddItem(productA(), 2, now))
	require.NoError(t, s.MarkSentToKitchen(now))
	require.NoError(t, s.AddItem(productB(), 1, now))

	unsent := s.UnsentItems()
	require.Len(t, unsent, 1)
	assert.Equal(t, int64(102), unsent[0].ProductID)

	require.NoError(t, s.MarkSentToKitchen(now))
	assert.Empty(t, s.UnsentItems())
}

func TestSale_ImmutableOnceClosed(t *testing.T) {
	now := time.Now()

	for _, close := range []func(*Sale) error{
		func(s *Sale) error { return s.MarkPaid(now) },
		func(s *Sale) error { return s.MarkCancelled(now) },
	} {
		s := newTestSale()
		require.NoError(t, s.AddItem(productA(), 1, now))
		require.NoError(t, close(s))

		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(s.AddItem(productB(), 1, now)))
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(s.UpdateQuantity(101, 1, now)))
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(s.RemoveItem(101, now)))
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(s.MarkPaid(now)))
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(s.MarkCancelled(now)))
	}
}
