package settings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/sales"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

// Service reads and updates account settings.
type Service struct {
	repo   Repository
	loc    *time.Location
	audit  shared.AuditRecorder
	logger *slog.Logger
}

// NewService constructs Service. loc is printed on receipts.
func NewService(repo Repository, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, loc: loc, logger: logger}
}

// WithAudit records settings updates through rec.
func (s *Service) WithAudit(rec shared.AuditRecorder) *Service {
	s.audit = rec
	return s
}

// Get returns the settings of the account.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (Settings, error) {
	return s.repo.Get(ctx, accountID)
}

// Update applies req on top of the stored settings.
func (s *Service) Update(ctx context.Context, accountID uuid.UUID, req UpdateRequest) (Settings, error) {
	current, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return Settings{}, err
	}
	next := req.apply(current)
	next.FullName = strings.TrimSpace(next.FullName)
	next.BusinessName = strings.TrimSpace(next.BusinessName)
	next.Phone = strings.TrimSpace(next.Phone)
	next.ReceiptFooter = strings.TrimSpace(next.ReceiptFooter)
	next.Currency = strings.ToUpper(strings.TrimSpace(next.Currency))
	if next.FullName == "" {
		return Settings{}, httpx.NewValidationError("full_name", "is required")
	}
	if len(next.Currency) != 3 {
		return Settings{}, httpx.NewValidationError("currency", "must be a 3 letter ISO 4217 code")
	}
	if next.DefaultMinStock < 0 {
		return Settings{}, httpx.NewValidationError("default_min_stock", "must not be negative")
	}
	saved, err := s.repo.Save(ctx, next)
	if err != nil {
		return Settings{}, err
	}
	shared.RecordAudit(ctx, s.audit, s.logger, shared.AuditLog{
		AccountID: accountID,
		Action:    "settings:update",
		Entity:    "settings",
		EntityID:  accountID.String(),
		Meta:      map[string]any{"currency": saved.Currency, "default_min_stock": saved.DefaultMinStock},
	})
	return saved, nil
}

// DefaultMinStock is the minimum stock given to products created without one.
func (s *Service) DefaultMinStock(ctx context.Context, accountID uuid.UUID) (int, error) {
	st, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return DefaultMinStock, err
	}
	return st.DefaultMinStock, nil
}

// ReceiptProfile returns the business details printed on receipts.
func (s *Service) ReceiptProfile(ctx context.Context, accountID uuid.UUID) (sales.ReceiptProfile, error) {
	st, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return sales.ReceiptProfile{}, err
	}
	name := st.BusinessName
	if name == "" {
		name = st.FullName
	}
	return sales.ReceiptProfile{
		BusinessName: name,
		OwnerName:    st.FullName,
		Phone:        st.Phone,
		Currency:     st.Currency,
		Footer:       st.ReceiptFooter,
		Location:     s.loc,
	}, nil
}
