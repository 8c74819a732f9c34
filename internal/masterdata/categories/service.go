package categories

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	appshared "github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

type Service struct {
	repo   Repository
	cache  shared.CacheInvalidator
	audit  appshared.AuditRecorder
	logger *slog.Logger
}

func NewService(repo Repository, cache shared.CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// WithAudit records every category mutation through rec.
func (s *Service) WithAudit(rec appshared.AuditRecorder) *Service {
	s.audit = rec
	return s
}

// List returns categories sorted by name.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, accountID, filters)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (Category, error) {
	if id == uuid.Nil {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, accountID, id)
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req CategoryRequest) (Category, error) {
	category := Category{AccountID: accountID, Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return Category{}, err
	}
	s.record(ctx, accountID, "category:create", created.ID, map[string]any{"name": created.Name})
	return created, nil
}

func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req CategoryRequest) (Category, error) {
	if id == uuid.Nil {
		return Category{}, shared.ErrInvalidID
	}
	category := Category{ID: id, AccountID: accountID, Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	updated, err := s.repo.Update(ctx, category)
	if err != nil {
		return Category{}, err
	}
	s.invalidate(ctx, accountID)
	s.record(ctx, accountID, "category:update", updated.ID, map[string]any{"name": updated.Name})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.invalidate(ctx, accountID)
	s.record(ctx, accountID, "category:delete", id, nil)
	return nil
}

// invalidate drops cached dashboards, which show category labels.
func (s *Service) invalidate(ctx context.Context, accountID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(context.WithoutCancel(ctx), accountID); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, accountID uuid.UUID, action string, id uuid.UUID, meta map[string]any) {
	appshared.RecordAudit(ctx, s.audit, s.logger, appshared.AuditLog{
		AccountID: accountID,
		Action:    action,
		Entity:    "category",
		EntityID:  id.String(),
		Meta:      meta,
	})
}
