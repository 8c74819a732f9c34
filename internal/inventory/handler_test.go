package inventory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

func newTestRouter(f *inventoryFixture) http.Handler {
	h := NewHandler(nil, f.svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), shared.Principal{AccountID: f.account})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/inventory", h.MountRoutes)
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerSummaryAndList(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	rec := serve(router, http.MethodGet, "/api/inventory/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.EqualValues(t, 3, sum["product_count"])
	assert.EqualValues(t, 1, sum["out_of_stock_count"])

	rec = serve(router, http.MethodGet, "/api/inventory/?stock=out", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []struct {
			Name        string `json:"name"`
			StockStatus string `json:"stock_status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Stapler", list.Data[0].Name)
	assert.Equal(t, "out", list.Data[0].StockStatus)

	rec = serve(router, http.MethodGet, "/api/inventory/low-stock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Notebook")
}

func TestHandlerAdjustment(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	path := fmt.Sprintf("/api/inventory/%s/adjustments", f.pen.ID)

	rec := serve(router, http.MethodPost, path, `{"delta":-5,"version":1,"note":"damaged"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Product struct {
			Stock   int `json:"stock"`
			Version int `json:"version"`
		} `json:"product"`
		Movement struct {
			Delta int `json:"delta"`
		} `json:"movement"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 35, result.Product.Stock)
	assert.Equal(t, 2, result.Product.Version)
	assert.Equal(t, -5, result.Movement.Delta)

	rec = serve(router, http.MethodPost, path, `{"delta":1,"version":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(router, http.MethodPost, path, `{"delta":-100,"version":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPost, "/api/inventory/not-a-uuid/adjustments", `{"delta":1,"version":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodGet, fmt.Sprintf("/api/inventory/%s/movements?limit=10", f.pen.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var movements struct {
		Data []Movement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements.Data, 1)
	assert.Equal(t, 35, movements.Data[0].StockAfter)
}
