package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
	_ "github.com/jassiaa29/pos-ventas-simple/testing"
)

type stubRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	minStock int
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[uuid.UUID]*Account{}}
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubRepo) Create(_ context.Context, account Account, defaultMinStock int) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return nil, ErrEmailTaken
		}
	}
	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	s.accounts[account.ID] = &account
	s.minStock = defaultMinStock
	cp := account
	return &cp, nil
}

type authFixture struct {
	router   http.Handler
	repo     *stubRepo
	sessions *shared.SessionManager
	redis    *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newStubRepo()
	svc := NewService(repo, nil, nil)
	svc.cost = bcrypt.MinCost
	sessions := shared.NewSessionManager(client, "pos_session", time.Hour, false)
	handler := NewHandler(nil, svc, sessions, shared.NewTokenIssuer("test-secret-test-secret-test-secret"))

	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return &authFixture{router: r, repo: repo, sessions: sessions, redis: mr}
}

func (f *authFixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func tokenOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp SignInResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

const signUpBody = `{"email":"Ana@Example.com","password":"secreto1","full_name":"Ana López","business_name":"Papelería Ana"}`

func TestSignUpSignInAndMe(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/signup", signUpBody, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, tokenOf(t, rec))
	assert.Equal(t, 5, f.repo.minStock)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(http.MethodPost, "/api/auth/signup", signUpBody, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/signin", `{"email":"ana@example.com","password":"wrong-one"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/signin", `{"email":"nobody@example.com","password":"secreto1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/signin", `{"email":"ana@example.com","password":"secreto1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := tokenOf(t, rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, token, cookies[0].Value)

	rec = f.do(http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "ana@example.com", me.Email)
	assert.Equal(t, "Papelería Ana", me.BusinessName)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	cookieRec := httptest.NewRecorder()
	f.router.ServeHTTP(cookieRec, req)
	assert.Equal(t, http.StatusOK, cookieRec.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	token := tokenOf(t, f.do(http.MethodPost, "/api/auth/signup", signUpBody, ""))

	rec := f.do(http.MethodPost, "/api/auth/signout", "", token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredSessionIsRejected(t *testing.T) {
	f := newAuthFixture(t)
	token := tokenOf(t, f.do(http.MethodPost, "/api/auth/signup", signUpBody, ""))

	f.redis.FastForward(2 * time.Hour)
	rec := f.do(http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignUpValidation(t *testing.T) {
	f := newAuthFixture(t)

	cases := map[string]string{
		"short password": `{"email":"a@b.co","password":"12345","full_name":"A"}`,
		"bad email":      `{"email":"not-an-email","password":"secreto1","full_name":"A"}`,
		"missing name":   `{"email":"a@b.co","password":"secreto1"}`,
		"unknown field":  `{"email":"a@b.co","password":"secreto1","full_name":"A","role":"admin"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/auth/signup", body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMiddlewareRejectsForgedToken(t *testing.T) {
	f := newAuthFixture(t)
	forger := shared.NewTokenIssuer("another-secret-another-secret-xx")
	sess, err := f.sessions.Create(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	forged, err := forger.Issue(sess)
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/auth/me", "", forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
