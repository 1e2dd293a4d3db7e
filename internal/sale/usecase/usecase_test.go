package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/fekuna/omnipos-restaurant-service/internal/events"
	"github.com/fekuna/omnipos-restaurant-service/internal/model"
	orderdto "github.com/fekuna/omnipos-restaurant-service/internal/order/dto"
	tabledto "github.com/fekuna/omnipos-restaurant-service/internal/table/dto"
	"github.com/fekuna/omnipos-restaurant-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaleRepo struct {
	sales  map[int64]*model.Sale
	nextID int64
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[int64]*model.Sale{}, nextID: 1}
}

func cloneSale(s *model.Sale) *model.Sale {
	clone := *s
	clone.Items = append([]model.SaleItem(nil), s.Items...)
	return &clone
}

func (r *fakeSaleRepo) Create(_ context.Context, s *model.Sale) error {
	s.ID = r.nextID
	r.nextID++
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
	stored, ok := r.sales[s.ID]
	if !ok {
		return apperr.NotFound("sale %d does not exist", s.ID)
	}
	if stored.Version != s.Version {
		return apperr.Conflict("sale %d was modified concurrently", s.ID)
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

type fakeOrderRepo struct {
	orders []*model.Order
}

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	o.ID = int64(len(r.orders) + 1)
	o.Version = 1
	r.orders = append(r.orders, o)
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, _ int64) (*model.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ *orderdto.OrderFilters) ([]model.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, _ *model.Order) error { return nil }

type fakeCatalogRepo struct {
	products map[int64]model.Product
	err      error
}

func (r *fakeCatalogRepo) FindCategories(_ context.Context, _ *int64) ([]model.Category, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) FindProductByID(_ context.Context, id int64) (*model.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeCatalogRepo) FindProductsByIDs(_ context.Context, ids []int64) ([]model.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindProductsByCategory(_ context.Context, _ int64) ([]model.Product, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) FindActiveProducts(_ context.Context) ([]model.Product, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) SearchProducts(_ context.Context, _ string) ([]model.Product, error) {
	return nil, nil
}

type passTxm struct{}

func (passTxm) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	saleRepo  *fakeSaleRepo
	tableRepo *fakeTableRepo
	orderRepo *fakeOrderRepo
	catalog   *fakeCatalogRepo
	uc        *saleUseCase
	sale      *model.Sale
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Now()

	saleRepo := newFakeSaleRepo()
	s := model.NewSale(1, 10, "T1", now)
	require.NoError(t, saleRepo.Create(context.Background(), s))

	tbl, err := model.NewTable(1, "T1", "Terrace", 4, model.TableStatusFree, now)
	require.NoError(t, err)
	tbl.ID = 10
	tbl.Version = 1
	require.NoError(t, tbl.OpenSale(s.ID, now))
	tableRepo := &fakeTableRepo{tables: map[int64]*model.Table{10: tbl}}

	orderRepo := &fakeOrderRepo{}
	catalogRepo := &fakeCatalogRepo{products: map[int64]model.Product{
		1: {BaseModel: model.BaseModel{ID: 1}, Name: "Margherita", Price: price("9.50")},
		2: {BaseModel: model.BaseModel{ID: 2}, Name: "Lemonade", Price: price("3.00")},
	}}

	uc := NewSaleUseCase(saleRepo, tableRepo, orderRepo, catalogRepo, passTxm{}, events.NopPublisher{}, logger.NewNop()).(*saleUseCase)
	return &fixture{
		saleRepo:  saleRepo,
		tableRepo: tableRepo,
		orderRepo: orderRepo,
		catalog:   catalogRepo,
		uc:        uc,
		sale:      s,
	}
}

func TestAddItem_SnapshotsPrice(t *testing.T) {
	f := newFixture(t)

	s, err := f.uc.AddItem(context.Background(), f.sale.ID, 1, 2)
	require.NoError(t, err)

	require.Len(t, s.Items, 1)
	assert.True(t, s.Items[0].UnitPrice.Equal(price("9.50")))

	// A later catalog price change must not touch the open cart.
	p := f.catalog.products[1]
	p.Price = price("99.99")
	f.catalog.products[1] = p

	s, err = f.uc.AddItem(context.Background(), f.sale.ID, 2, 1)
	require.NoError(t, err)
	assert.True(t, s.Items[0].UnitPrice.Equal(price("9.50")))
}

func TestAddItem_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.AddItem(context.Background(), f.sale.ID, 404, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAddItem_CatalogDown(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("connection refused")

	_, err := f.uc.AddItem(context.Background(), f.sale.ID, 1, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
}

func TestAddItem_RefreshesTableTotal(t *testing.T) {
	f := newFixture(t)

	s, err := f.uc.AddItem(context.Background(), f.sale.ID, 1, 2)
	require.NoError(t, err)

	tbl := f.tableRepo.tables[10]
	require.NotNil(t, tbl.CurrentSaleTotal)
	assert.True(t, tbl.CurrentSaleTotal.Equal(s.Total))
}

func TestAddItem_DoesNotTouchForeignTableTotal(t *testing.T) {
	f := newFixture(t)

	// The table has moved on to a different sale.
	otherSale := int64(99)
	f.tableRepo.tables[10].CurrentSaleID = &otherSale

	_, err := f.uc.AddItem(context.Background(), f.sale.ID, 1, 2)
	require.NoError(t, err)

	assert.Nil(t, f.tableRepo.tables[10].CurrentSaleTotal)
}

func TestSendToKitchen_CreatesOrderFromUnsentLines(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.AddItem(context.Background(), f.sale.ID, 1, 2)
	require.NoError(t, err)
	_, err = f.uc.AddItem(context.Background(), f.sale.ID, 2, 1)
	require.NoError(t, err)

	o, err := f.uc.SendToKitchen(context.Background(), f.sale.ID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Margherita", o.Items[0].ProductName)
	assert.Equal(t, 2, o.Items[0].Quantity)

	s, err := f.uc.GetSale(context.Background(), f.sale.ID)
	require.NoError(t, err)
	assert.Empty(t, s.UnsentItems())
}

func TestSendToKitchen_OnlyNewLinesGoOut(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.AddItem(context.Background(), f.sale.ID, 1, 2)
	require.NoError(t, err)
	_, err = f.uc.SendToKitchen(context.Background(), f.sale.ID)
	require.NoError(t, err)

	_, err = f.uc.AddItem(context.Background(), f.sale.ID, 2, 1)
	require.NoError(t, err)

	o, err := f.uc.SendToKitchen(context.Background(), f.sale.ID)
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "Lemonade", o.Items[0].ProductName)
}

func TestSendToKitchen_NothingToSend(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SendToKitchen(context.Background(), f.sale.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, f.orderRepo.orders)
}

func TestMutate_SaleNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.RemoveItem(context.Background(), 404, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
