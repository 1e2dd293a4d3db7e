package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/bill/dto"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	tabledto "github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBillRepo struct {
	bills     map[int64]*model.Bill
	nextID    int64
	updateErr error
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: map[int64]*model.Bill{}, nextID: 1}
}

func cloneBill(b *model.Bill) *model.Bill {
	clone := *b
	clone.Items = append([]model.BillItem(nil), b.Items...)
	return &clone
}

func (r *fakeBillRepo) Create(_ context.Context, b *model.Bill) error {
	b.ID = r.nextID
	r.nextID++
	b.Version = 1
	r.bills[b.ID] = cloneBill(b)
	return nil
}

func (r *fakeBillRepo) FindByID(_ context.Context, id int64) (*model.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	return cloneBill(b), nil
}

func (r *fakeBillRepo) FindOpenByTable(_ context.Context, tableID int64) (*model.Bill, error) {
	for _, b := range r.bills {
		if b.TableID == tableID && b.Status == model.BillStatusOpen {
			return cloneBill(b), nil
		}
	}
	return nil, nil
}

func (r *fakeBillRepo) Update(_ context.Context, b *model.Bill) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.bills[b.ID]
	if !ok {
		return apperr.NotFound("bill %d does not exist", b.ID)
	}
	if stored.Version != b.Version {
		return apperr.Conflict("bill %d was modified concurrently", b.ID)
	}
	b.Version++
	r.bills[b.ID] = cloneBill(b)
	return nil
}

type fakeSaleRepo struct {
	sales map[int64]*model.Sale
}

func cloneSale(s *model.Sale) *model.Sale {
	clone := *s
	clone.Items = append([]model.SaleItem(nil), s.Items...)
	return &clone
}

func (r *fakeSaleRepo) Create(_ context.Context, s *model.Sale) error {
	s.ID = int64(len(r.sales) + 1)
	s.Version = 1
	r.sales[s.ID] = cloneSale(s)
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, id int64) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(s), nil
}

func (r *fakeSaleRepo) FindOpenByTable(_ context.Context, tableID int64) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.TableID == tableID && s.Status == model.SaleStatusOpen {
			return cloneSale(s), nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) Update(_ context.Context, s *model.Sale) error {
	if _, ok := r.sales[s.ID]; !ok {
		return apperr.NotFound("sale %d does not exist", s.ID)
	}
	s.Version++
	r.sales[s.ID] = cloneSale(s)
	return nil
}

type fakeTableRepo struct {
	tables map[int64]*model.Table
}

func (r *fakeTableRepo) Create(_ context.Context, t *model.Table) error { return nil }

func (r *fakeTableRepo) FindByID(_ context.Context, id int64) (*model.Table, error) {
	t, ok := r.tables[id]
	if !ok {
		return nil, nil
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTableRepo) FindAll(_ context.Context, _ *tabledto.TableFilters) ([]model.Table, error) {
	return nil, nil
}

func (r *fakeTableRepo) Update(_ context.Context, t *model.Table) error {
	clone := *t
	r.tables[t.ID] = &clone
	return nil
}

func (r *fakeTableRepo) Areas(_ context.Context, _ int64) ([]string, error) { return nil, nil }

func (r *fakeTableRepo) CountByStatus(_ context.Context, _ int64) (*tabledto.StatusCounts, error) {
	return &tabledto.StatusCounts{}, nil
}

type passTxm struct{}

func (passTxm) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	billRepo  *fakeBillRepo
	saleRepo  *fakeSaleRepo
	tableRepo *fakeTableRepo
	uc        *billUseCase
	sale      *model.Sale
	table     *model.Table
}

// newFixture seats guests at table 10 with a two-line open sale:
// 2x Margherita 9.50 + 1x Lemonade 3.00 = 22.00, VAT 4.40, total 26.40.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Now()

	s := model.NewSale(1, 10, "T1", now)
	saleRepo := &fakeSaleRepo{sales: map[int64]*model.Sale{}}
	require.NoError(t, saleRepo.Create(context.Background(), s))

	margherita := &model.Product{BaseModel: model.BaseModel{ID: 1}, Name: "Margherita", Price: price("9.50")}
	lemonade := &model.Product{BaseModel: model.BaseModel{ID: 2}, Name: "Lemonade", Price: price("3.00")}
	require.NoError(t, s.AddItem(margherita, 2, now))
	require.NoError(t, s.AddItem(lemonade, 1, now))
	require.NoError(t, saleRepo.Update(context.Background(), s))

	tbl, err := model.NewTable(1, "T1", "Terrace", 4, model.TableStatusFree, now)
	require.NoError(t, err)
	tbl.ID = 10
	tbl.Version = 1
	require.NoError(t, tbl.OpenSale(s.ID, now))
	tableRepo := &fakeTableRepo{tables: map[int64]*model.Table{10: tbl}}

	billRepo := newFakeBillRepo()
	uc := NewBillUseCase(billRepo, saleRepo, tableRepo, passTxm{}, events.NopPublisher{}, logger.NewNop()).(*billUseCase)

	return &fixture{
		billRepo:  billRepo,
		saleRepo:  saleRepo,
		tableRepo: tableRepo,
		uc:        uc,
		sale:      s,
		table:     tbl,
	}
}

func TestOpenOrFetch_SnapshotsOpenSale(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, model.BillStatusOpen, b.Status)
	assert.Equal(t, f.sale.ID, b.SaleID)
	assert.Equal(t, "T1", b.TableName)
	require.Len(t, b.Items, 2)
	assert.True(t, b.Subtotal.Equal(price("22.00")), "subtotal %s", b.Subtotal)
	assert.True(t, b.Tax.Equal(price("4.40")), "tax %s", b.Tax)
	assert.True(t, b.Total.Equal(price("26.40")), "total %s", b.Total)
}

func TestOpenOrFetch_ReturnsExistingBill(t *testing.T) {
	f := newFixture(t)

	first, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	second, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.billRepo.bills, 1)
}

func TestOpenOrFetch_NoOpenSale(t *testing.T) {
	f := newFixture(t)
	f.saleRepo.sales[f.sale.ID].Status = model.SaleStatusPaid

	_, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestPay_CashSettlesEverything(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	paid, err := f.uc.Pay(context.Background(), b.ID, &dto.PayBillInput{Method: model.PaymentMethodCash})
	require.NoError(t, err)

	assert.Equal(t, model.BillStatusPaid, paid.Status)
	require.NotNil(t, paid.CashAmount)
	assert.True(t, paid.CashAmount.Equal(paid.Total))

	sale := f.saleRepo.sales[f.sale.ID]
	assert.Equal(t, model.SaleStatusPaid, sale.Status)

	tbl := f.tableRepo.tables[10]
	assert.Equal(t, model.TableStatusFree, tbl.Status)
	assert.Nil(t, tbl.CurrentSaleID)
	assert.Nil(t, tbl.OpenedAt)
}

func TestPay_SplitWithinTolerance(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	paid, err := f.uc.Pay(context.Background(), b.ID, &dto.PayBillInput{
		Method:     model.PaymentMethodSplit,
		CashAmount: price("13.20"),
		CardAmount: price("13.20"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.BillStatusPaid, paid.Status)
}

func TestPay_SplitMismatchLeavesEverythingOpen(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	_, err = f.uc.Pay(context.Background(), b.ID, &dto.PayBillInput{
		Method:     model.PaymentMethodSplit,
		CashAmount: price("13.00"),
		CardAmount: price("13.20"),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	assert.Equal(t, model.BillStatusOpen, f.billRepo.bills[b.ID].Status)
	assert.Equal(t, model.SaleStatusOpen, f.saleRepo.sales[f.sale.ID].Status)
	assert.Equal(t, model.TableStatusOccupied, f.tableRepo.tables[10].Status)
}

func TestPay_AlreadyPaid(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	_, err = f.uc.Pay(context.Background(), b.ID, &dto.PayBillInput{Method: model.PaymentMethodCard})
	require.NoError(t, err)

	_, err = f.uc.Pay(context.Background(), b.ID, &dto.PayBillInput{Method: model.PaymentMethodCard})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestPay_StaleBillConflicts(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	// Another terminal settles the bill first; our write loses the race.
	f.billRepo.updateErr = apperr.Conflict("bill %d was modified concurrently", b.ID)

	_, err = f.uc.Pay(context.Background(), b.ID, &dto.PayBillInput{Method: model.PaymentMethodCash})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// The losing writer must not have touched the rest of the floor.
	assert.Equal(t, model.SaleStatusOpen, f.saleRepo.sales[f.sale.ID].Status)
	assert.Equal(t, model.TableStatusOccupied, f.tableRepo.tables[10].Status)
}

func TestCancel_FreesTableWithoutPayment(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	cancelled, err := f.uc.Cancel(context.Background(), b.ID)
	require.NoError(t, err)

	assert.Equal(t, model.BillStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.PaymentMethod)
	assert.Equal(t, model.SaleStatusCancelled, f.saleRepo.sales[f.sale.ID].Status)
	assert.Equal(t, model.TableStatusFree, f.tableRepo.tables[10].Status)
}

func TestAddItem_RecomputesTotals(t *testing.T) {
	f := newFixture(t)

	b, err := f.uc.OpenOrFetch(context.Background(), 10)
	require.NoError(t, err)

	updated, err := f.uc.AddItem(context.Background(), b.ID, &dto.AddBillItemInput{
		Name:      "Espresso",
		Quantity:  2,
		UnitPrice: price("2.50"),
	})
	require.NoError(t, err)

	assert.True(t, updated.Subtotal.Equal(price("27.00")), "subtotal %s", updated.Subtotal)
	assert.True(t, updated.Tax.Equal(price("5.40")), "tax %s", updated.Tax)
	assert.True(t, updated.Total.Equal(price("32.40")), "total %s", updated.Total)
}
