package customers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

type Service struct {
	repo  Repository
	audit shared.AuditRecorder
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithAudit records every customer mutation through rec.
func (s *Service) WithAudit(rec shared.AuditRecorder) *Service {
	s.audit = rec
	return s
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req CreateCustomerRequest) (*Customer, error) {
	customer := Customer{
		AccountID: accountID,
		Name:      strings.TrimSpace(req.Name),
		Email:     trimmed(req.Email),
		Phone:     trimmed(req.Phone),
		Address:   trimmed(req.Address),
		City:      trimmed(req.City),
		Notes:     trimmed(req.Notes),
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.record(ctx, accountID, "customer:create", customer.ID, map[string]any{"name": customer.Name})
	return &customer, nil
}

func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req UpdateCustomerRequest) (*Customer, error) {
	existing, err := s.repo.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	// Empty strings clear optional fields.
	for col, v := range map[string]*string{
		"email":   req.Email,
		"phone":   req.Phone,
		"address": req.Address,
		"city":    req.City,
		"notes":   req.Notes,
	} {
		if v != nil {
			updates[col] = trimmed(v)
		}
	}

	if len(updates) == 0 {
		return existing, nil
	}
	if err := s.repo.Update(ctx, accountID, id, updates); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	fields := make([]string, 0, len(updates))
	for col := range updates {
		fields = append(fields, col)
	}
	sort.Strings(fields)
	s.record(ctx, accountID, "customer:update", id, map[string]any{"fields": fields})
	return s.repo.Get(ctx, accountID, id)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Customer, error) {
	return s.repo.Get(ctx, accountID, id)
}

// List returns customers newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, req ListCustomersRequest) ([]Customer, shared.Pagination, error) {
	customers, total, err := s.repo.List(ctx, accountID, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return customers, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Delete removes the customer. Past sales keep their totals and lose the link.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.record(ctx, accountID, "customer:delete", id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, accountID uuid.UUID, action string, id uuid.UUID, meta map[string]any) {
	shared.RecordAudit(ctx, s.audit, nil, shared.AuditLog{
		AccountID: accountID,
		Action:    action,
		Entity:    "customer",
		EntityID:  id.String(),
		Meta:      meta,
	})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
