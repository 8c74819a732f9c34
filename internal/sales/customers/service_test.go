package customers

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

type mockRepository struct {
	customers map[uuid.UUID]*Customer
	clock     time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		customers: make(map[uuid.UUID]*Customer),
		clock:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepository) Get(ctx context.Context, accountID, id uuid.UUID) (*Customer, error) {
	c, ok := m.customers[id]
	if !ok || c.AccountID != accountID {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *mockRepository) List(ctx context.Context, accountID uuid.UUID, req ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range m.customers {
		if c.AccountID != accountID {
			continue
		}
		if req.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(req.Search)) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, c *Customer) error {
	m.clock = m.clock.Add(time.Minute)
	c.ID = uuid.New()
	c.CreatedAt = m.clock
	c.UpdatedAt = m.clock
	stored := *c
	m.customers[c.ID] = &stored
	return nil
}

func (m *mockRepository) Update(ctx context.Context, accountID, id uuid.UUID, updates map[string]any) error {
	c, ok := m.customers[id]
	if !ok || c.AccountID != accountID {
		return ErrNotFound
	}
	for col, v := range updates {
		switch col {
		case "name":
			c.Name = v.(string)
		case "email":
			c.Email = v.(*string)
		case "phone":
			c.Phone = v.(*string)
		case "address":
			c.Address = v.(*string)
		case "city":
			c.City = v.(*string)
		case "notes":
			c.Notes = v.(*string)
		}
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	c, ok := m.customers[id]
	if !ok || c.AccountID != accountID {
		return ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateTrimsOptionalFields(t *testing.T) {
	svc := NewService(newMockRepository())
	account := uuid.New()

	c, err := svc.Create(context.Background(), account, CreateCustomerRequest{
		Name:  "  María López ",
		Email: strPtr("maria@example.com"),
		Phone: strPtr("   "),
		City:  strPtr("Quito"),
	})
	require.NoError(t, err)
	assert.Equal(t, "María López", c.Name)
	assert.Nil(t, c.Phone)
	require.NotNil(t, c.City)
	assert.Equal(t, "Quito", *c.City)
	assert.Equal(t, account, c.AccountID)
}

func TestListNewestFirstAndScoped(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	account := uuid.New()
	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		_, err := svc.Create(context.Background(), account, CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), uuid.New(), CreateCustomerRequest{Name: "Otro"})
	require.NoError(t, err)

	list, page, err := svc.List(context.Background(), account, ListCustomersRequest{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Carla", list[0].Name)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 20, page.PerPage)

	found, _, err := svc.List(context.Background(), account, ListCustomersRequest{Search: "bru"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bruno", found[0].Name)
}

func TestUpdate(t *testing.T) {
	svc := NewService(newMockRepository())
	account := uuid.New()
	c, err := svc.Create(context.Background(), account, CreateCustomerRequest{Name: "Ana", Phone: strPtr("555-1234")})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), account, c.ID, UpdateCustomerRequest{
		Name:  strPtr("Ana María"),
		Phone: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.Name)
	assert.Nil(t, updated.Phone)

	unchanged, err := svc.Update(context.Background(), account, c.ID, UpdateCustomerRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", unchanged.Name)

	_, err = svc.Update(context.Background(), uuid.New(), c.ID, UpdateCustomerRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := NewService(newMockRepository())
	account := uuid.New()
	c, err := svc.Create(context.Background(), account, CreateCustomerRequest{Name: "Ana"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New(), c.ID), httpx.ErrNotFound)
	require.NoError(t, svc.Delete(context.Background(), account, c.ID))
	_, err = svc.Get(context.Background(), account, c.ID)
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

type auditRecorder struct{ logs []shared.AuditLog }

func (a *auditRecorder) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestCustomerMutationsAreAudited(t *testing.T) {
	audit := &auditRecorder{}
	svc := NewService(newMockRepository()).WithAudit(audit)
	account := uuid.New()
	ctx := context.Background()

	c, err := svc.Create(ctx, account, CreateCustomerRequest{Name: "María García"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, account, c.ID, UpdateCustomerRequest{Phone: strPtr("555-0101"), City: strPtr("Monterrey")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, account, c.ID, UpdateCustomerRequest{})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, account, c.ID))
	require.Error(t, svc.Delete(ctx, account, c.ID))

	require.Len(t, audit.logs, 3)
	assert.Equal(t, "customer:create", audit.logs[0].Action)
	assert.Equal(t, "customer:update", audit.logs[1].Action)
	assert.Equal(t, []string{"city", "phone"}, audit.logs[1].Meta["fields"])
	assert.Equal(t, "customer:delete", audit.logs[2].Action)
	for _, log := range audit.logs {
		assert.Equal(t, "customer", log.Entity)
		assert.Equal(t, c.ID.String(), log.EntityID)
		assert.Equal(t, account, log.AccountID)
	}
}
