package sale

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	GetSale(ctx context.Context, id int64) (*model.Sale, error)
	GetOpenByTable(ctx context.Context, tableID int64) (*model.Sale, error)
	AddItem(ctx context.Context, saleID, productID int64, quantity int) (*model.Sale, error)
	UpdateQuantity(ctx context.Context, saleID, productID int64, delta int) (*model.Sale, error)
	RemoveItem(ctx context.Context, saleID, productID int64) (*model.Sale, error)
	SetItemNote(ctx context.Context, saleID, productID int64, note string) (*model.Sale, error)
	SetItemDiscount(ctx context.Context, saleID, productID int64, discount decimal.Decimal) (*model.Sale, error)
	// SendToKitchen creates a PENDING order from the sale's not-yet-sent lines.
	SendToKitchen(ctx context.Context, saleID int64) (*model.Order, error)
}
