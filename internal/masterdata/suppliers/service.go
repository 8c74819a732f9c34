package suppliers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	appshared "github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

type Service struct {
	repo  Repository
	audit appshared.AuditRecorder
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithAudit records every supplier mutation through rec.
func (s *Service) WithAudit(rec appshared.AuditRecorder) *Service {
	s.audit = rec
	return s
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, accountID, filters)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (Supplier, error) {
	if id == uuid.Nil {
		return Supplier{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, accountID, id)
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req SupplierRequest) (Supplier, error) {
	supplier := fromRequest(req)
	supplier.AccountID = accountID
	if err := s.validate(supplier); err != nil {
		return Supplier{}, err
	}
	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return Supplier{}, err
	}
	s.record(ctx, accountID, "supplier:create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

// Update replaces every field of the supplier.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req SupplierRequest) (Supplier, error) {
	if id == uuid.Nil {
		return Supplier{}, shared.ErrInvalidID
	}
	supplier := fromRequest(req)
	supplier.ID = id
	supplier.AccountID = accountID
	if err := s.validate(supplier); err != nil {
		return Supplier{}, err
	}
	updated, err := s.repo.Update(ctx, supplier)
	if err != nil {
		return Supplier{}, err
	}
	s.record(ctx, accountID, "supplier:update", updated.ID, map[string]any{"name": updated.Name})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.record(ctx, accountID, "supplier:delete", id, nil)
	return nil
}

func fromRequest(req SupplierRequest) Supplier {
	return Supplier{
		Name:        strings.TrimSpace(req.Name),
		ContactName: optional(req.ContactName),
		Email:       optional(req.Email),
		Phone:       optional(req.Phone),
		Address:     optional(req.Address),
		Notes:       optional(req.Notes),
	}
}

func (s *Service) record(ctx context.Context, accountID uuid.UUID, action string, id uuid.UUID, meta map[string]any) {
	appshared.RecordAudit(ctx, s.audit, nil, appshared.AuditLog{
		AccountID: accountID,
		Action:    action,
		Entity:    "supplier",
		EntityID:  id.String(),
		Meta:      meta,
	})
}
