package bill

import (
	"context"

	"github.com/fekuna/omnipos-restaurant-service/internal/bill/dto"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
)

type UseCase interface {
	// OpenOrFetch returns the table's existing OPEN bill, or snapshots the
	// table's open sale into a new one.
	OpenOrFetch(ctx context.Context, tableID int64) (*model.Bill, error)
	GetBill(ctx context.Context, id int64) (*model.Bill, error)
	AddItem(ctx context.Context, billID int64, input *dto.AddBillItemInput) (*model.Bill, error)
	// Pay settles the bill and releases the owning table as one transaction:
	// a PAID bill never leaves its table OCCUPIED.
	Pay(ctx context.Context, billID int64, input *dto.PayBillInput) (*model.Bill, error)
	Cancel(ctx context.Context, billID int64) (*model.Bill, error)
}
