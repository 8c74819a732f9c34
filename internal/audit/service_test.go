package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

type stubTimelineRepo struct {
	rows       []TimelineRow
	lastOffset int
	lastLimit  int
	lastFilter TimelineFilters
	accountID  uuid.UUID
}

func (s *stubTimelineRepo) Timeline(_ context.Context, accountID uuid.UUID, f TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	s.accountID = accountID
	s.lastFilter = f
	s.lastOffset = offset
	s.lastLimit = limit
	end := offset + limit
	if offset > len(s.rows) {
		return nil, nil
	}
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func sampleRows(n int) []TimelineRow {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := make([]TimelineRow, n)
	for i := range rows {
		rows[i] = TimelineRow{
			ID:       int64(n - i),
			At:       base.Add(-time.Duration(i) * time.Hour),
			Action:   "sale:checkout",
			Entity:   "sale",
			EntityID: fmt.Sprintf("V%03d", n-i),
			Meta:     json.RawMessage(`{"total":"10.00"}`),
		}
	}
	return rows
}

func TestServiceTimelinePaging(t *testing.T) {
	repo := &stubTimelineRepo{rows: sampleRows(3)}
	svc := NewService(repo)
	account := uuid.New()

	result, err := svc.Timeline(context.Background(), account, TimelineFilters{Page: 1, PageSize: 2, Entity: " sale "})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Equal(t, 3, repo.lastLimit)
	assert.Equal(t, 0, repo.lastOffset)
	assert.Equal(t, "sale", repo.lastFilter.Entity)
	assert.Equal(t, account, repo.accountID)

	result, err = svc.Timeline(context.Background(), account, TimelineFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, result.Rows, 1)
	assert.False(t, result.Paging.HasNext)
	assert.Equal(t, 1, result.Paging.PrevPage)
	assert.Equal(t, 2, repo.lastOffset)
}

func TestServiceTimelineClampsPageSize(t *testing.T) {
	repo := &stubTimelineRepo{}
	result, err := NewService(repo).Timeline(context.Background(), uuid.New(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, result.Paging.PageSize)
	assert.Equal(t, maxPageSize+1, repo.lastLimit)
	assert.NotNil(t, result.Rows)
}

func TestWriteTimelineCSV(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("CST", -6*3600)
	require.NoError(t, WriteTimelineCSV(&buf, sampleRows(1), loc))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"At", "Action", "Entity", "Entity ID", "Meta"}, records[0])
	assert.Equal(t, "2024-03-10T06:00:00-06:00", records[1][0])
	assert.Equal(t, `{"total":"10.00"}`, records[1][4])
}

func newAuditRouter(repo Repository) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/audit", NewHandler(nil, NewService(repo), time.UTC).MountRoutes)
	return r
}

func authed(req *http.Request, account uuid.UUID) *http.Request {
	ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{AccountID: account, SessionID: "s"})
	return req.WithContext(ctx)
}

func TestHandlerTimelineAndExport(t *testing.T) {
	repo := &stubTimelineRepo{rows: sampleRows(2)}
	router := newAuditRouter(repo)
	account := uuid.New()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/audit?from=2024-03-01&to=2024-03-31&action=sale", nil), account))
	require.Equal(t, http.StatusOK, rec.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Rows, 2)
	require.NotNil(t, repo.lastFilter.Range.To)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), *repo.lastFilter.Range.To)
	assert.Equal(t, "sale", repo.lastFilter.Action)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/audit/export", nil), account))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, ExportLimit, repo.lastLimit)
	assert.Contains(t, rec.Body.String(), "V002")
}

func TestHandlerRejectsBadInput(t *testing.T) {
	router := newAuditRouter(&stubTimelineRepo{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audit", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/api/audit?from=yesterday", nil), uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
