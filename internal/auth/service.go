package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jassiaa29/pos-ventas-simple/internal/settings"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// dummyHash keeps sign in timing similar for unknown emails.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pos-ventas-dummy"), bcrypt.MinCost)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	audit  AuditPort
	cost   int
	logger *slog.Logger
}

// NewService constructs a new Service. audit may be nil.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cost: bcrypt.DefaultCost, logger: logger}
}

// SignUp creates an account with default settings.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	account := Account{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	created, err := s.repo.Create(ctx, account, settings.DefaultMinStock)
	if err != nil {
		return nil, err
	}
	s.record(ctx, created.ID, "auth:signup")
	return created, nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	s.record(ctx, account.ID, "auth:signin")
	return account, nil
}

// Account loads the account of a principal.
func (s *Service) Account(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) record(ctx context.Context, accountID uuid.UUID, action string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{AccountID: accountID, Action: action, Entity: "account", EntityID: accountID.String()}); err != nil {
		s.logger.Warn("audit auth event", slog.String("action", action), slog.Any("error", err))
	}
}
