package sales

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/events"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	mu        sync.Mutex
	products  map[uuid.UUID]ProductSnapshot
	customers map[uuid.UUID]bool
	sales     []Sale
	counter   int

	// Error injection
	txError       error
	allocateError error
	insertError   error
}

func newMockRepository(products ...ProductSnapshot) *mockRepository {
	m := &mockRepository{
		products:  make(map[uuid.UUID]ProductSnapshot),
		customers: make(map[uuid.UUID]bool),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// WithTx stages writes and applies them only when fn succeeds.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if m.txError != nil {
		return m.txError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &mockTxRepo{mock: m, stock: make(map[uuid.UUID]int)}
	for id, p := range m.products {
		tx.stock[id] = p.Stock
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, s := range tx.stock {
		p := m.products[id]
		p.Stock = s
		m.products[id] = p
	}
	for _, sale := range tx.sales {
		m.sales = append(m.sales, *sale)
	}
	if tx.allocated {
		m.counter++
	}
	if tx.advanceTo > m.counter {
		m.counter = tx.advanceTo
	}
	return nil
}

func (m *mockRepository) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Sale, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Sale
	for i := len(m.sales) - 1; i >= 0; i-- {
		s := m.sales[i]
		if s.AccountID != accountID {
			continue
		}
		if filter.PaymentMethod != "" && s.PaymentMethod != filter.PaymentMethod {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id && s.AccountID == accountID {
			sale := s
			return &sale, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) ProductSnapshots(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]ProductSnapshot, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *mockRepository) ProductsBySKU(ctx context.Context, accountID uuid.UUID, code string) ([]ProductSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ProductSnapshot
	for _, p := range m.products {
		if foldSKU(p.SKU) == foldSKU(code) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepository) stockOf(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

type mockTxRepo struct {
	mock      *mockRepository
	stock     map[uuid.UUID]int
	sales     []*Sale
	allocated bool
	advanceTo int
}

func (t *mockTxRepo) AllocateSaleNumber(ctx context.Context, accountID uuid.UUID) (string, error) {
	if t.mock.allocateError != nil {
		return "", t.mock.allocateError
	}
	t.allocated = true
	return fmt.Sprintf("V%03d", t.mock.counter+1), nil
}

func (t *mockTxRepo) LastSaleNumber(ctx context.Context, accountID uuid.UUID) (string, error) {
	for i := len(t.mock.sales) - 1; i >= 0; i-- {
		if t.mock.sales[i].AccountID == accountID {
			return t.mock.sales[i].SaleNumber, nil
		}
	}
	return "", errNoPreviousSale
}

func (t *mockTxRepo) AdvanceSaleCounter(ctx context.Context, accountID uuid.UUID, value int64) error {
	if int(value) > t.advanceTo {
		t.advanceTo = int(value)
	}
	return nil
}

func (t *mockTxRepo) LockProducts(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ProductSnapshot, error) {
	out := make(map[uuid.UUID]ProductSnapshot, len(ids))
	for _, id := range ids {
		if p, ok := t.mock.products[id]; ok {
			p.Stock = t.stock[id]
			out[id] = p
		}
	}
	return out, nil
}

func (t *mockTxRepo) CustomerExists(ctx context.Context, accountID, id uuid.UUID) (bool, error) {
	return t.mock.customers[id], nil
}

func (t *mockTxRepo) InsertSale(ctx context.Context, sale *Sale) error {
	if t.mock.insertError != nil {
		return t.mock.insertError
	}
	for _, existing := range t.mock.sales {
		if existing.AccountID == sale.AccountID && existing.SaleNumber == sale.SaleNumber {
			return ErrDuplicateSaleNumber
		}
	}
	sale.ID = uuid.New()
	sale.CreatedAt = sale.SaleDate
	t.sales = append(t.sales, sale)
	return nil
}

func (t *mockTxRepo) InsertItems(ctx context.Context, saleID uuid.UUID, items []SaleItem) error {
	for i := range items {
		items[i].ID = uuid.New()
		items[i].SaleID = saleID
	}
	return nil
}

func (t *mockTxRepo) DecrementStock(ctx context.Context, accountID, productID uuid.UUID, qty int, reference string) (int, error) {
	if t.stock[productID] < qty {
		return 0, ErrInsufficientStock
	}
	t.stock[productID] -= qty
	return t.stock[productID], nil
}

// ============================================================================
// MOCK COLLABORATORS
// ============================================================================

type mockIdempotency struct {
	mu      sync.Mutex
	keys    map[string]bool
	deleted []string
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{keys: make(map[string]bool)}
}

func (m *mockIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *mockIdempotency) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type recordingSideEffects struct {
	mu       sync.Mutex
	bumps    []uuid.UUID
	events   []events.SaleCompleted
	jobs     [][]uuid.UUID
	audits   []shared.AuditLog
	eventErr error
}

func (r *recordingSideEffects) Bump(ctx context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bumps = append(r.bumps, accountID)
	return nil
}

func (r *recordingSideEffects) PublishSaleCompleted(ctx context.Context, evt events.SaleCompleted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.eventErr != nil {
		return r.eventErr
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingSideEffects) PublishStockLow(ctx context.Context, evt events.StockLow) error {
	return nil
}

func (r *recordingSideEffects) EnqueueLowStockCheck(ctx context.Context, accountID uuid.UUID, productIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, productIDs)
	return nil
}

func (r *recordingSideEffects) Record(ctx context.Context, log shared.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, log)
	return nil
}

type serviceFixture struct {
	repo    *mockRepository
	idem    *mockIdempotency
	effects *recordingSideEffects
	svc     *Service
	account uuid.UUID
}

func newServiceFixture(products ...ProductSnapshot) *serviceFixture {
	repo := newMockRepository(products...)
	idem := newMockIdempotency()
	effects := &recordingSideEffects{}
	svc := NewService(repo, ServiceDeps{
		Idempotency: idem,
		Audit:       effects,
		Events:      effects,
		Jobs:        effects,
		Cache:       effects,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC) }
	return &serviceFixture{repo: repo, idem: idem, effects: effects, svc: svc, account: uuid.New()}
}

func cashPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// ============================================================================
// CHECKOUT TESTS
// ============================================================================

func TestCheckoutPersistsSaleAndDecrementsStock(t *testing.T) {
	laptop := snapshot("Laptop HP", "LAP-001", "100.00", 5)
	f := newServiceFixture(laptop)

	sale, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines:                 []CheckoutLine{{ProductID: laptop.ID, Quantity: 2, DiscountPercent: dec("10")}},
		GlobalDiscountPercent: dec("5"),
		PaymentMethod:         PaymentCash,
		CashReceived:          cashPtr("200"),
	})
	require.NoError(t, err)

	assert.Equal(t, "V001", sale.SaleNumber)
	assert.True(t, sale.Subtotal.Equal(dec("200")))
	assert.True(t, sale.ItemDiscountAmount.Equal(dec("20")))
	assert.True(t, sale.GlobalDiscountAmount.Equal(dec("9")))
	assert.True(t, sale.TotalAmount.Equal(dec("171")))
	require.NotNil(t, sale.ChangeDue)
	assert.True(t, sale.ChangeDue.Equal(dec("29")))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "Laptop HP", sale.Items[0].ProductName)
	assert.True(t, sale.Items[0].Subtotal.Equal(dec("200")))
	assert.Equal(t, 3, f.repo.stockOf(laptop.ID))

	assert.Len(t, f.effects.bumps, 1)
	require.Len(t, f.effects.events, 1)
	assert.Equal(t, "171.00", f.effects.events[0].Total)
	require.Len(t, f.effects.jobs, 1)
	assert.Equal(t, []uuid.UUID{laptop.ID}, f.effects.jobs[0])
	require.Len(t, f.effects.audits, 1)
	assert.Equal(t, "sale.completed", f.effects.audits[0].Action)
}

func TestCheckoutCardIgnoresCash(t *testing.T) {
	mouse := snapshot("Mouse", "MOU-1", "25.50", 10)
	f := newServiceFixture(mouse)

	sale, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: mouse.ID, Quantity: 1}},
		PaymentMethod: PaymentCard,
		CashReceived:  cashPtr("1"),
	})
	require.NoError(t, err)
	assert.Nil(t, sale.CashReceived)
	assert.Nil(t, sale.ChangeDue)
}

func TestCheckoutValidation(t *testing.T) {
	p := snapshot("Teclado", "TEC-1", "50", 3)
	tests := []struct {
		name string
		req  CheckoutRequest
	}{
		{"empty", CheckoutRequest{PaymentMethod: PaymentCard}},
		{"bad method", CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: "cheque"}},
		{"zero quantity", CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 0}}, PaymentMethod: PaymentCard}},
		{"global discount over 100", CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard, GlobalDiscountPercent: dec("120")}},
		{"duplicate product", CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}, {ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard}},
		{"cash missing", CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCash}},
		{"cash short", CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCash, CashReceived: cashPtr("49.99")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(p)
			_, err := f.svc.Checkout(context.Background(), f.account, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, httpx.ErrValidation)
			assert.Equal(t, 3, f.repo.stockOf(p.ID))
			assert.Empty(t, f.effects.events)
		})
	}
}

func TestCheckoutInsufficientStockIsAtomic(t *testing.T) {
	a := snapshot("Monitor", "MON-1", "10", 5)
	b := snapshot("Cable", "CAB-1", "2", 1)
	f := newServiceFixture(a, b)

	_, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines: []CheckoutLine{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 3},
		},
		PaymentMethod: PaymentCard,
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, f.repo.stockOf(a.ID))
	assert.Equal(t, 1, f.repo.stockOf(b.ID))
	assert.Empty(t, f.repo.sales)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := newServiceFixture()
	_, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: uuid.New(), Quantity: 1}},
		PaymentMethod: PaymentCard,
	})
	require.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCheckoutUnknownCustomer(t *testing.T) {
	p := snapshot("Tablet", "TAB-1", "300", 2)
	f := newServiceFixture(p)
	customer := uuid.New()

	_, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentCard,
		CustomerID:    &customer,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	f.repo.customers[customer] = true
	sale, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines:         []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: PaymentCard,
		CustomerID:    &customer,
	})
	require.NoError(t, err)
	assert.Equal(t, &customer, sale.CustomerID)
}

func TestCheckoutIdempotency(t *testing.T) {
	p := snapshot("Parlante", "PAR-1", "80", 10)
	f := newServiceFixture(p)
	req := CheckoutRequest{
		Lines:          []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  PaymentCard,
		IdempotencyKey: "abc",
	}

	_, err := f.svc.Checkout(context.Background(), f.account, req)
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), f.account, req)
	require.ErrorIs(t, err, httpx.ErrConflict)
	assert.Equal(t, 9, f.repo.stockOf(p.ID))
}

func TestCheckoutReleasesIdempotencyKeyOnFailure(t *testing.T) {
	p := snapshot("Parlante", "PAR-1", "80", 10)
	f := newServiceFixture(p)
	f.repo.insertError = errors.New("connection reset")
	req := CheckoutRequest{
		Lines:          []CheckoutLine{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod:  PaymentCard,
		IdempotencyKey: "retry-me",
	}

	_, err := f.svc.Checkout(context.Background(), f.account, req)
	require.Error(t, err)
	assert.Equal(t, []string{f.account.String() + ":retry-me"}, f.idem.deleted)

	f.repo.insertError = nil
	_, err = f.svc.Checkout(context.Background(), f.account, req)
	require.NoError(t, err)
}

func TestCheckoutFallsBackWhenSequenceFails(t *testing.T) {
	p := snapshot("Mouse", "MOU-1", "10", 10)
	f := newServiceFixture(p)

	first, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard,
	})
	require.NoError(t, err)
	require.Equal(t, "V001", first.SaleNumber)

	f.repo.allocateError = errors.New("function generate_sale_number does not exist")
	second, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard,
	})
	require.NoError(t, err)
	assert.Equal(t, "V002", second.SaleNumber)
}

func TestCheckoutSequenceResumesAfterFallback(t *testing.T) {
	p := snapshot("Mouse", "MOU-1", "10", 10)
	f := newServiceFixture(p)
	checkout := func() (*Sale, error) {
		return f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
			Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard,
		})
	}

	for i := 0; i < 2; i++ {
		_, err := checkout()
		require.NoError(t, err)
	}

	f.repo.allocateError = errors.New("canceling statement due to lock timeout")
	fallback, err := checkout()
	require.NoError(t, err)
	require.Equal(t, "V003", fallback.SaleNumber)

	f.repo.allocateError = nil
	for _, want := range []string{"V004", "V005"} {
		sale, err := checkout()
		require.NoError(t, err)
		assert.Equal(t, want, sale.SaleNumber)
	}
}

func TestCheckoutSideEffectFailuresDoNotFailSale(t *testing.T) {
	p := snapshot("Mouse", "MOU-1", "10", 10)
	f := newServiceFixture(p)
	f.effects.eventErr = events.ErrBufferFull

	sale, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sale.ID)
	assert.Len(t, f.effects.audits, 1)
}

func TestCheckoutTransactionError(t *testing.T) {
	p := snapshot("Mouse", "MOU-1", "10", 10)
	f := newServiceFixture(p)
	f.repo.txError = errors.New("pool closed")

	_, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard,
	})
	require.Error(t, err)
	assert.Empty(t, f.effects.bumps)
}

// ============================================================================
// QUERY TESTS
// ============================================================================

func TestQuoteUsesCurrentPrices(t *testing.T) {
	a := snapshot("A", "A-1", "19.99", 3)
	b := snapshot("B", "B-1", "5.01", 3)
	f := newServiceFixture(a, b)

	totals, err := f.svc.Quote(context.Background(), f.account, []CheckoutLine{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 2, DiscountPercent: dec("50")},
	}, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(dec("30.01")))
	assert.True(t, totals.ItemDiscounts.Equal(dec("5.01")))
	assert.True(t, totals.Total.Equal(dec("25")))
	assert.Equal(t, 3, totals.ItemCount)
}

func TestListNewestFirst(t *testing.T) {
	p := snapshot("Mouse", "MOU-1", "10", 10)
	f := newServiceFixture(p)
	for _, m := range []PaymentMethod{PaymentCard, PaymentCash, PaymentCard} {
		req := CheckoutRequest{Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: m}
		if m == PaymentCash {
			req.CashReceived = cashPtr("10")
		}
		_, err := f.svc.Checkout(context.Background(), f.account, req)
		require.NoError(t, err)
	}

	all, page, err := f.svc.List(context.Background(), f.account, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, "V003", all[0].SaleNumber)

	cards, _, err := f.svc.List(context.Background(), f.account, ListFilter{PaymentMethod: PaymentCard})
	require.NoError(t, err)
	assert.Len(t, cards, 2)

	_, _, err = f.svc.List(context.Background(), f.account, ListFilter{PaymentMethod: "bitcoin"})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	other, _, err := f.svc.List(context.Background(), uuid.New(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGetIsAccountScoped(t *testing.T) {
	p := snapshot("Mouse", "MOU-1", "10", 10)
	f := newServiceFixture(p)
	sale, err := f.svc.Checkout(context.Background(), f.account, CheckoutRequest{
		Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCard,
	})
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), f.account, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.SaleNumber, got.SaleNumber)

	_, err = f.svc.Get(context.Background(), uuid.New(), sale.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

// ============================================================================
// RECEIPT TESTS
// ============================================================================

type stubProfiles struct{ profile ReceiptProfile }

func (s stubProfiles) ReceiptProfile(ctx context.Context, accountID uuid.UUID) (ReceiptProfile, error) {
	return s.profile, nil
}

type stubPDF struct{ html string }

func (s *stubPDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	s.html = html
	return []byte("%PDF-1.7"), nil
}

func TestReceiptRendering(t *testing.T) {
	p := snapshot("Auriculares", "AUR-1", "99.99", 5)
	repo := newMockRepository(p)
	pdf := &stubPDF{}
	svc := NewService(repo, ServiceDeps{
		Receipts: NewReceiptRenderer(stubProfiles{ReceiptProfile{BusinessName: "Tienda Sol", Currency: "USD", Footer: "Gracias por su compra"}}, pdf),
	})
	account := uuid.New()
	sale, err := svc.Checkout(context.Background(), account, CheckoutRequest{
		Lines: []CheckoutLine{{ProductID: p.ID, Quantity: 1}}, PaymentMethod: PaymentCash, CashReceived: cashPtr("100"),
	})
	require.NoError(t, err)

	html, err := svc.ReceiptHTML(context.Background(), account, sale.ID)
	require.NoError(t, err)
	body := string(html)
	assert.Contains(t, body, "Tienda Sol")
	assert.Contains(t, body, sale.SaleNumber)
	assert.Contains(t, body, "Auriculares")
	assert.Contains(t, body, "Gracias por su compra")

	out, err := svc.ReceiptPDF(context.Background(), account, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(out))
	assert.Contains(t, pdf.html, "Tienda Sol")

	noPDF := NewService(repo, ServiceDeps{})
	_, err = noPDF.ReceiptPDF(context.Background(), account, sale.ID)
	assert.ErrorIs(t, err, ErrPDFUnavailable)
}
