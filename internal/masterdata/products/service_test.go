package products

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	appshared "github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

type mockRepository struct {
	products   map[uuid.UUID]Product
	categories map[uuid.UUID]uuid.UUID // category -> account
	createErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: map[uuid.UUID]Product{}, categories: map[uuid.UUID]uuid.UUID{}}
}

func (m *mockRepository) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range m.products {
		if p.AccountID == accountID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(ctx context.Context, accountID, id uuid.UUID) (Product, error) {
	p, ok := m.products[id]
	if !ok || p.AccountID != accountID {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *mockRepository) Create(ctx context.Context, p Product) (Product, error) {
	if m.createErr != nil {
		return Product{}, m.createErr
	}
	p.ID = uuid.New()
	p.Version = 1
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepository) Update(ctx context.Context, p Product, expectedVersion int) (Product, error) {
	stored, ok := m.products[p.ID]
	if !ok || stored.AccountID != p.AccountID {
		return Product{}, ErrNotFound
	}
	if stored.Version != expectedVersion {
		return Product{}, shared.ErrVersionConflict
	}
	p.Version = expectedVersion + 1
	m.products[p.ID] = p
	return p, nil
}

func (m *mockRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	p, ok := m.products[id]
	if !ok || p.AccountID != accountID {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockRepository) CategoryExists(ctx context.Context, accountID, categoryID uuid.UUID) (bool, error) {
	owner, ok := m.categories[categoryID]
	return ok && owner == accountID, nil
}

type fixedDefaults struct {
	n   int
	err error
}

func (f fixedDefaults) DefaultMinStock(ctx context.Context, accountID uuid.UUID) (int, error) {
	return f.n, f.err
}

type countingCache struct{ bumps int }

func (c *countingCache) Bump(ctx context.Context, accountID uuid.UUID) error {
	c.bumps++
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newMockRepository()
	cache := &countingCache{}
	svc := NewService(repo, fixedDefaults{n: 7}, cache, nil)
	account := uuid.New()

	p, err := svc.Create(context.Background(), account, CreateProductRequest{
		Name:  " Laptop HP ",
		SKU:   strPtr(" LAP-001 "),
		Price: dec("799.999"),
		Cost:  dec("650"),
		Stock: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Laptop HP", p.Name)
	assert.Equal(t, "LAP-001", *p.SKU)
	assert.Equal(t, "800.00", p.Price.StringFixed(2))
	assert.Equal(t, 7, p.MinStock)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, 1, cache.bumps)

	explicit, err := svc.Create(context.Background(), account, CreateProductRequest{Name: "Mouse", MinStock: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, explicit.MinStock)

	fallback := NewService(repo, fixedDefaults{err: errors.New("settings down")}, nil, nil)
	p, err = fallback.Create(context.Background(), account, CreateProductRequest{Name: "Cable"})
	require.NoError(t, err)
	assert.Equal(t, fallbackMinStock, p.MinStock)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)
	account := uuid.New()

	_, err := svc.Create(context.Background(), account, CreateProductRequest{Name: "X", Price: dec("-1")})
	var verr *httpx.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")

	_, err = svc.Create(context.Background(), account, CreateProductRequest{Name: "X", Price: dec("10000000000")})
	require.ErrorAs(t, err, &verr)

	foreign := uuid.New()
	_, err = svc.Create(context.Background(), account, CreateProductRequest{Name: "X", CategoryID: &foreign})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category_id")
}

func TestUpdateOptimisticConcurrency(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, fixedDefaults{n: 5}, nil, nil)
	account := uuid.New()
	p, err := svc.Create(context.Background(), account, CreateProductRequest{Name: "Monitor", Price: dec("299.99"), Stock: 4})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), account, p.ID, UpdateProductRequest{Version: 1, Price: ptr(dec("279.99"))})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "279.99", updated.Price.StringFixed(2))
	assert.Equal(t, "Monitor", updated.Name)

	_, err = svc.Update(context.Background(), account, p.ID, UpdateProductRequest{Version: 1, Stock: intPtr(1)})
	assert.ErrorIs(t, err, shared.ErrVersionConflict)
	assert.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.Update(context.Background(), uuid.New(), p.ID, UpdateProductRequest{Version: 2})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateCategory(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)
	account := uuid.New()
	cat := uuid.New()
	repo.categories[cat] = account

	p, err := svc.Create(context.Background(), account, CreateProductRequest{Name: "Tablet", CategoryID: &cat})
	require.NoError(t, err)
	require.Equal(t, &cat, p.CategoryID)

	cleared, err := svc.Update(context.Background(), account, p.ID, UpdateProductRequest{Version: p.Version, ClearCategory: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)
}

func TestListRejectsUnknownFilters(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)
	_, _, err := svc.List(context.Background(), uuid.New(), shared.ListFilters{Stock: "plenty"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
	_, _, err = svc.List(context.Background(), uuid.New(), shared.ListFilters{Status: "archived"})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStockLevel(t *testing.T) {
	tests := []struct {
		stock, min int
		status     Status
		level      StockLevel
		low        bool
	}{
		{0, 5, StatusActive, StockOut, true},
		{3, 5, StatusActive, StockLow, true},
		{5, 5, StatusActive, StockLow, true},
		{6, 5, StatusActive, StockOK, false},
		{2, 5, StatusInactive, StockLow, false},
	}
	for _, tt := range tests {
		p := Product{Stock: tt.stock, MinStock: tt.min, Status: tt.status}
		assert.Equal(t, tt.level, p.StockLevel())
		assert.Equal(t, tt.low, p.IsLowStock())
	}
	assert.Equal(t, "59.97", Product{Price: dec("19.99"), Stock: 3}.StockValue().StringFixed(2))
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func ptr[T any](v T) *T       { return &v }

type auditRecorder struct{ logs []appshared.AuditLog }

func (a *auditRecorder) Record(_ context.Context, log appshared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestMutationsAreAudited(t *testing.T) {
	audit := &auditRecorder{}
	svc := NewService(newMockRepository(), nil, nil, nil).WithAudit(audit)
	account := uuid.New()
	ctx := context.Background()

	p, err := svc.Create(ctx, account, CreateProductRequest{Name: "Teclado", Price: dec("89.99"), Stock: 20})
	require.NoError(t, err)
	_, err = svc.Update(ctx, account, p.ID, UpdateProductRequest{Version: p.Version, Name: strPtr("Teclado Mecánico")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, account, p.ID, UpdateProductRequest{Version: p.Version})
	require.Error(t, err)
	require.NoError(t, svc.Delete(ctx, account, p.ID))

	require.Len(t, audit.logs, 3)
	actions := []string{audit.logs[0].Action, audit.logs[1].Action, audit.logs[2].Action}
	assert.Equal(t, []string{"product:create", "product:update", "product:delete"}, actions)
	for _, log := range audit.logs {
		assert.Equal(t, account, log.AccountID)
		assert.Equal(t, "product", log.Entity)
		assert.Equal(t, p.ID.String(), log.EntityID)
	}
}
