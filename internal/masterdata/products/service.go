package products

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	"github.com/jassiaa29/pos-ventas-simple/internal/money"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	appshared "github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

var ErrNotFound = fmt.Errorf("product: %w", httpx.ErrNotFound)

// DefaultsSource supplies account level product defaults.
type DefaultsSource interface {
	DefaultMinStock(ctx context.Context, accountID uuid.UUID) (int, error)
}

const fallbackMinStock = 5

type Service struct {
	repo     Repository
	defaults DefaultsSource
	cache    shared.CacheInvalidator
	audit    appshared.AuditRecorder
	logger   *slog.Logger
}

// NewService builds the product service. defaults and cache may be nil.
func NewService(repo Repository, defaults DefaultsSource, cache shared.CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, defaults: defaults, cache: cache, logger: logger}
}

// WithAudit records every product mutation through rec.
func (s *Service) WithAudit(rec appshared.AuditRecorder) *Service {
	s.audit = rec
	return s
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID, filters shared.ListFilters) ([]Product, int, error) {
	if filters.Status != "" && !Status(filters.Status).Valid() {
		return nil, 0, httpx.NewValidationError("status", "must be one of active inactive")
	}
	switch StockLevel(filters.Stock) {
	case "", "all", StockLow, StockOut:
	default:
		return nil, 0, httpx.NewValidationError("stock", "must be one of all low out")
	}
	return s.repo.List(ctx, accountID, filters)
}

func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (Product, error) {
	if id == uuid.Nil {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, accountID, id)
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, req CreateProductRequest) (Product, error) {
	product := Product{
		AccountID:   accountID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         cleanSKU(req.SKU),
		Description: req.Description,
		Price:       money.Round(req.Price),
		Cost:        money.Round(req.Cost),
		Stock:       req.Stock,
		Status:      req.Status,
	}
	if product.Status == "" {
		product.Status = StatusActive
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	} else {
		product.MinStock = s.defaultMinStock(ctx, accountID)
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if err := s.checkCategory(ctx, accountID, product.CategoryID); err != nil {
		return Product{}, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx, accountID)
	s.record(ctx, accountID, "product:create", created.ID, map[string]any{"name": created.Name, "stock": created.Stock})
	return created, nil
}

// Update applies req when req.Version matches the stored version.
func (s *Service) Update(ctx context.Context, accountID, id uuid.UUID, req UpdateProductRequest) (Product, error) {
	if id == uuid.Nil {
		return Product{}, shared.ErrInvalidID
	}
	product, err := s.repo.Get(ctx, accountID, id)
	if err != nil {
		return Product{}, err
	}
	if product.Version != req.Version {
		return Product{}, shared.ErrVersionConflict
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		product.SKU = cleanSKU(req.SKU)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.ClearCategory {
		product.CategoryID = nil
	}
	if req.Price != nil {
		product.Price = money.Round(*req.Price)
	}
	if req.Cost != nil {
		product.Cost = money.Round(*req.Cost)
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.Status != nil {
		product.Status = *req.Status
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if req.CategoryID != nil && !req.ClearCategory {
		if err := s.checkCategory(ctx, accountID, product.CategoryID); err != nil {
			return Product{}, err
		}
	}

	updated, err := s.repo.Update(ctx, product, req.Version)
	if err != nil {
		return Product{}, err
	}
	s.invalidate(ctx, accountID)
	s.record(ctx, accountID, "product:update", updated.ID, map[string]any{"version": updated.Version})
	return updated, nil
}

// Delete removes the product. Sale items keep their name and price snapshot.
func (s *Service) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if id == uuid.Nil {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, accountID, id); err != nil {
		return err
	}
	s.invalidate(ctx, accountID)
	s.record(ctx, accountID, "product:delete", id, nil)
	return nil
}

func (s *Service) checkCategory(ctx context.Context, accountID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	ok, err := s.repo.CategoryExists(ctx, accountID, *categoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return httpx.NewValidationError("category_id", "unknown category")
	}
	return nil
}

func (s *Service) defaultMinStock(ctx context.Context, accountID uuid.UUID) int {
	if s.defaults == nil {
		return fallbackMinStock
	}
	n, err := s.defaults.DefaultMinStock(ctx, accountID)
	if err != nil {
		s.logger.Warn("load default min stock", slog.Any("error", err))
		return fallbackMinStock
	}
	return n
}

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
		Entity:    "product",
		EntityID:  id.String(),
		Meta:      meta,
	})
}
