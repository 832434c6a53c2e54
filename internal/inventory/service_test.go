package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modvice/shopstock/internal/domain"
)

type fakeProductRepo struct {
	products map[int64]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) DecrementStock(_ context.Context, id int64, qty int) error {
	p, ok := r.products[id]
	if !ok || p.Quantity < qty {
		return ErrInsufficientStock
	}
	p.Quantity -= qty
	return nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, id int64, delta int) error {
	if p, ok := r.products[id]; ok {
		p.Quantity += delta
	}
	return nil
}

type fakeSaleRepo struct {
	nextID int64
	sales  map[int64]*domain.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{nextID: 1, sales: make(map[int64]*domain.Sale)}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *domain.Sale) error {
	sale.ID = r.nextID
	r.nextID++
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id int64) (*domain.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, ErrSaleNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) Delete(_ context.Context, id int64) error {
	delete(r.sales, id)
	return nil
}

type fakeReorderRepo struct {
	nextID  int64
	pending map[int64]*domain.ReorderRequest // by product id
	created int
}

func newFakeReorderRepo() *fakeReorderRepo {
	return &fakeReorderRepo{nextID: 1, pending: make(map[int64]*domain.ReorderRequest)}
}

func (r *fakeReorderRepo) GetPending(_ context.Context, productID int64) (*domain.ReorderRequest, error) {
	req, ok := r.pending[productID]
	if !ok {
		return nil, ErrNotFoundPending
	}
	return req, nil
}

func (r *fakeReorderRepo) Create(_ context.Context, req *domain.ReorderRequest) error {
	if _, ok := r.pending[req.ProductID]; ok {
		return ErrPendingExists
	}
	req.ID = r.nextID
	r.nextID++
	r.created++
	r.pending[req.ProductID] = req
	return nil
}

func newTestService(products ...*domain.Product) (*Service, *fakeProductRepo, *fakeSaleRepo, *fakeReorderRepo) {
	pr := newFakeProductRepo(products...)
	sr := newFakeSaleRepo()
	rr := newFakeReorderRepo()
	return NewService(pr, sr, rr, nil), pr, sr, rr
}

func TestRecordTransactionSale(t *testing.T) {
	svc, pr, _, _ := newTestService(&domain.Product{
		ID: 1, Name: "Air Runner", Brand: "Modvice", Barcode: "880001",
		Quantity: 10, ReorderThreshold: 3, Price: 10,
	})

	p, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 1, Type: domain.TxSale, Qty: 3, UnitPrice: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 7, p.Quantity)
	assert.Equal(t, 7, pr.products[1].Quantity)
	assert.Equal(t, 30.0, sale.Amount)
	assert.Equal(t, "Air Runner", sale.ProductName)
	assert.Equal(t, "880001", sale.Barcode)
	assert.Equal(t, time.Now().Format("2006-01-02"), sale.Date)
}

func TestRecordTransactionSignConvention(t *testing.T) {
	cases := []struct {
		kind   string
		qty    int
		price  float64
		amount float64
	}{
		{domain.TxSale, 3, 10, 30},
		{domain.TxReturn, 3, 10, -30},
		{domain.TxRestock, 5, 10, 50},
	}
	for _, tc := range cases {
		svc, _, _, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 100, ReorderThreshold: 0})
		_, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
			ProductID: 1, Type: tc.kind, Qty: tc.qty, UnitPrice: tc.price,
		})
		require.NoError(t, err, tc.kind)
		assert.Equal(t, tc.amount, sale.Amount, tc.kind)
	}
}

func TestRecordTransactionInsufficientStock(t *testing.T) {
	svc, pr, sr, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 2, ReorderThreshold: 0})

	_, _, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 1, Type: domain.TxSale, Qty: 3, UnitPrice: 5,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, pr.products[1].Quantity, "no mutation on rejected sale")
	assert.Empty(t, sr.sales, "no ledger entry on rejected sale")
}

func TestRecordTransactionQuantityInvariant(t *testing.T) {
	svc, pr, _, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 5, ReorderThreshold: 0})

	accepted := 0
	for i := 0; i < 8; i++ {
		_, _, err := svc.RecordTransaction(context.Background(), TransactionRequest{
			ProductID: 1, Type: domain.TxSale, Qty: 1, UnitPrice: 1,
		})
		if err == nil {
			accepted++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 5, accepted)
	assert.Equal(t, 0, pr.products[1].Quantity)
}

func TestRecordTransactionProductNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, _, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 42, Type: domain.TxSale, Qty: 1, UnitPrice: 1,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordTransactionValidation(t *testing.T) {
	svc, _, sr, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 10})

	cases := []TransactionRequest{
		{ProductID: 0, Type: domain.TxSale, Qty: 1, UnitPrice: 1},
		{ProductID: 1, Type: "Swap", Qty: 1, UnitPrice: 1},
		{ProductID: 1, Type: domain.TxSale, Qty: 0, UnitPrice: 1},
		{ProductID: 1, Type: domain.TxSale, Qty: -2, UnitPrice: 1},
		{ProductID: 1, Type: domain.TxSale, Qty: 1, UnitPrice: -0.01},
	}
	for i, req := range cases {
		_, _, err := svc.RecordTransaction(context.Background(), req)
		assert.True(t, IsValidationError(err), "case %d should fail validation", i)
	}
	assert.Empty(t, sr.sales)
}

func TestRevertTransactionRestoresQuantity(t *testing.T) {
	svc, pr, sr, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 10, ReorderThreshold: 0})

	_, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 1, Type: domain.TxSale, Qty: 2, UnitPrice: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 8, pr.products[1].Quantity)

	require.NoError(t, svc.RevertTransaction(context.Background(), sale.ID, true))
	assert.Equal(t, 10, pr.products[1].Quantity)
	assert.Empty(t, sr.sales, "ledger entry deleted")
}

func TestRevertTransactionWithoutRevertKeepsQuantity(t *testing.T) {
	svc, pr, sr, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 10, ReorderThreshold: 0})

	_, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 1, Type: domain.TxRestock, Qty: 5, UnitPrice: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 15, pr.products[1].Quantity)

	require.NoError(t, svc.RevertTransaction(context.Background(), sale.ID, false))
	assert.Equal(t, 15, pr.products[1].Quantity)
	assert.Empty(t, sr.sales)
}

func TestRevertTransactionInverseDeltas(t *testing.T) {
	cases := []struct {
		kind  string
		after int // quantity after record on base 10, qty 2
	}{
		{domain.TxSale, 8},
		{domain.TxReturn, 12},
		{domain.TxRestock, 12},
	}
	for _, tc := range cases {
		svc, pr, _, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 10, ReorderThreshold: 0})
		_, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
			ProductID: 1, Type: tc.kind, Qty: 2, UnitPrice: 1,
		})
		require.NoError(t, err, tc.kind)
		require.Equal(t, tc.after, pr.products[1].Quantity, tc.kind)

		require.NoError(t, svc.RevertTransaction(context.Background(), sale.ID, true))
		assert.Equal(t, 10, pr.products[1].Quantity, tc.kind)
	}
}

func TestRevertTransactionProductDeleted(t *testing.T) {
	svc, pr, sr, _ := newTestService(&domain.Product{ID: 1, Name: "x", Quantity: 10, ReorderThreshold: 0})

	_, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 1, Type: domain.TxSale, Qty: 2, UnitPrice: 4,
	})
	require.NoError(t, err)

	delete(pr.products, 1)

	require.NoError(t, svc.RevertTransaction(context.Background(), sale.ID, true))
	assert.Empty(t, sr.sales, "ledger entry deleted even when product is gone")
}

func TestRevertTransactionNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	err := svc.RevertTransaction(context.Background(), 99, true)
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestEnsureReorderAboveThresholdNoop(t *testing.T) {
	svc, _, _, rr := newTestService()
	p := &domain.Product{ID: 1, Quantity: 4, ReorderThreshold: 3}
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	assert.Zero(t, rr.created)
}

func TestEnsureReorderAtThresholdCreates(t *testing.T) {
	svc, _, _, rr := newTestService()
	p := &domain.Product{ID: 1, Quantity: 3, ReorderThreshold: 3}
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	require.Equal(t, 1, rr.created)
	assert.Equal(t, 3, rr.pending[1].QtySuggestion) // 2*3 - 3
}

func TestEnsureReorderSuggestionFormula(t *testing.T) {
	svc, _, _, rr := newTestService()
	p := &domain.Product{ID: 1, Quantity: 1, ReorderThreshold: 3}
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	require.NotNil(t, rr.pending[1])
	assert.Equal(t, 5, rr.pending[1].QtySuggestion) // max(1, 2*3-1)
}

func TestEnsureReorderSuggestionFloor(t *testing.T) {
	svc, _, _, rr := newTestService()
	p := &domain.Product{ID: 1, Quantity: 0, ReorderThreshold: 0}
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	require.NotNil(t, rr.pending[1])
	assert.Equal(t, 1, rr.pending[1].QtySuggestion)
}

// lostRaceReorderRepo simulates the window where another writer inserts the
// Pending request between our existence check and our insert: GetPending
// misses, then the partial unique index rejects the create.
type lostRaceReorderRepo struct {
	createCalls int
}

func (r *lostRaceReorderRepo) GetPending(_ context.Context, _ int64) (*domain.ReorderRequest, error) {
	return nil, ErrNotFoundPending
}

func (r *lostRaceReorderRepo) Create(_ context.Context, _ *domain.ReorderRequest) error {
	r.createCalls++
	return ErrPendingExists
}

func TestEnsureReorderLostInsertRaceIsNoop(t *testing.T) {
	rr := &lostRaceReorderRepo{}
	bus := EventBus.New()
	published := false
	require.NoError(t, bus.Subscribe(TopicReorderCreated,
		func(req *domain.ReorderRequest, p *domain.Product) { published = true }))

	svc := NewService(newFakeProductRepo(), newFakeSaleRepo(), rr, bus)

	p := &domain.Product{ID: 1, Quantity: 2, ReorderThreshold: 5}
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	assert.Equal(t, 1, rr.createCalls)
	assert.False(t, published, "rejected insert must not announce a new request")
}

func TestEnsureReorderIdempotent(t *testing.T) {
	svc, _, _, rr := newTestService()
	p := &domain.Product{ID: 1, Quantity: 1, ReorderThreshold: 3}
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	require.NoError(t, svc.EnsureReorderIfNeeded(context.Background(), p))
	assert.Equal(t, 1, rr.created, "exactly one pending request per product")
}

func TestEndToEndReorderScenario(t *testing.T) {
	svc, pr, _, rr := newTestService(&domain.Product{
		ID: 1, Name: "x", Quantity: 5, ReorderThreshold: 5,
	})

	_, sale, err := svc.RecordTransaction(context.Background(), TransactionRequest{
		ProductID: 1, Type: domain.TxSale, Qty: 1, UnitPrice: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, pr.products[1].Quantity)
	assert.Equal(t, 20.0, sale.Amount)
	require.NotNil(t, rr.pending[1], "4 <= 5 must create a pending request")
	assert.Equal(t, 6, rr.pending[1].QtySuggestion) // max(1, 10-4)
}
