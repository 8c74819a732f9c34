package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	tokens         *shared.TokenIssuer
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, tokens *shared.TokenIssuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		tokens:         tokens,
		validator:      httpx.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/signup", h.handleSignUp)
		r.Post("/signin", h.handleSignIn)
	})
	r.Group(func(r chi.Router) {
		r.Use(Middleware(h.sessionManager, h.tokens, h.logger))
		r.Post("/signout", h.handleSignOut)
		r.Get("/me", h.handleMe)
	})
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	h.logger.Info("account created", slog.String("account_id", account.ID.String()))
	h.startSession(w, r, account, http.StatusCreated)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := httpx.Validate(h.validator, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	h.startSession(w, r, account, http.StatusOK)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, account *Account, status int) {
	sess, err := h.sessionManager.Create(r.Context(), account.ID, r)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	token, err := h.tokens.Issue(sess)
	if err != nil {
		_ = h.sessionManager.Destroy(r.Context(), sess.ID)
		httpx.Fail(w, r, h.logger, err)
		return
	}
	h.sessionManager.SetCookie(w, token, sess.ExpiresAt)
	httpx.JSON(w, status, SignInResponse{Token: token, ExpiresAt: sess.ExpiresAt, Account: account})
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.sessionManager.Destroy(r.Context(), p.SessionID); err != nil {
		h.logger.Warn("remove session", slog.Any("error", err))
	}
	h.sessionManager.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := shared.RequirePrincipal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.Account(r.Context(), p.AccountID)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}
