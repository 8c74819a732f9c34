package inventory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jassiaa29/pos-ventas-simple/internal/events"
	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
	mdshared "github.com/jassiaa29/pos-ventas-simple/internal/masterdata/shared"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Movements(ctx context.Context, accountID, productID uuid.UUID, limit int) ([]Movement, error)
	Summary(ctx context.Context, accountID uuid.UUID) (Summary, error)
	LowStock(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) ([]products.Product, error)
}

// ServiceDeps groups optional collaborators. Nil members are skipped.
type ServiceDeps struct {
	Audit  AuditPort
	Events events.Publisher
	Cache  mdshared.CacheInvalidator
	Logger *slog.Logger
}

// Service coordinates inventory operations.
type Service struct {
	repo    RepositoryPort
	catalog Catalog
	deps    ServiceDeps
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, catalog Catalog, deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		deps:    deps,
		logger:  logger.With(slog.String("component", "inventory")),
		now:     time.Now,
	}
}

// List returns catalogue products with their stock status.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filters mdshared.ListFilters) ([]StockItem, int, error) {
	if filters.Stock == "all" {
		filters.Stock = ""
	}
	found, total, err := s.catalog.List(ctx, accountID, filters)
	if err != nil {
		return nil, 0, err
	}
	items := make([]StockItem, len(found))
	for i, p := range found {
		items[i] = newStockItem(p)
	}
	return items, total, nil
}

// Summary returns the stock counters of the account.
func (s *Service) Summary(ctx context.Context, accountID uuid.UUID) (Summary, error) {
	return s.repo.Summary(ctx, accountID)
}

// LowStock lists active products at or under their minimum.
func (s *Service) LowStock(ctx context.Context, accountID uuid.UUID) ([]StockItem, error) {
	found, err := s.repo.LowStock(ctx, accountID, nil)
	if err != nil {
		return nil, err
	}
	items := make([]StockItem, len(found))
	for i, p := range found {
		items[i] = newStockItem(p)
	}
	return items, nil
}

// Movements lists the stock ledger of a product, newest first.
func (s *Service) Movements(ctx context.Context, accountID, productID uuid.UUID, limit int) ([]Movement, error) {
	if productID == uuid.Nil {
		return nil, mdshared.ErrInvalidID
	}
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}
	return s.repo.Movements(ctx, accountID, productID, limit)
}

// Adjust applies a signed stock correction. The caller's version must match
// the product's current version.
func (s *Service) Adjust(ctx context.Context, accountID, productID uuid.UUID, input AdjustmentInput) (AdjustmentResult, error) {
	if productID == uuid.Nil {
		return AdjustmentResult{}, mdshared.ErrInvalidID
	}
	if input.Delta == 0 {
		return AdjustmentResult{}, ErrInvalidQuantity
	}
	if input.Delta > MaxStock || input.Delta < -MaxStock {
		return AdjustmentResult{}, ErrStockOverflow
	}
	if input.ExpectedVersion <= 0 {
		return AdjustmentResult{}, httpx.NewValidationError("version", "is required")
	}
	input.Note = trimmed(input.Note)
	input.Reference = trimmed(input.Reference)

	var result AdjustmentResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.LockProduct(ctx, accountID, productID)
		if err != nil {
			return err
		}
		if product.Version != input.ExpectedVersion {
			return mdshared.ErrVersionConflict
		}
		next := product.Stock + input.Delta
		if next < 0 {
			return ErrNegativeStock
		}
		if next > MaxStock {
			return ErrStockOverflow
		}
		now := s.now().UTC()
		version, err := tx.SetStock(ctx, accountID, productID, next, now)
		if err != nil {
			return err
		}
		movement := Movement{
			AccountID:  accountID,
			ProductID:  productID,
			Delta:      input.Delta,
			StockAfter: next,
			Reason:     ReasonAdjustment,
			Reference:  input.Reference,
			Note:       input.Note,
			CreatedAt:  now,
		}
		if movement.ID, err = tx.InsertMovement(ctx, movement); err != nil {
			return err
		}
		product.Stock = next
		product.Version = version
		product.UpdatedAt = now
		result = AdjustmentResult{Product: newStockItem(product), Movement: movement}
		return nil
	})
	if err != nil {
		return AdjustmentResult{}, err
	}

	s.afterAdjust(ctx, result)
	return result, nil
}

func (s *Service) afterAdjust(ctx context.Context, result AdjustmentResult) {
	ctx = context.WithoutCancel(ctx)
	product := result.Product.Product
	if s.deps.Cache != nil {
		if err := s.deps.Cache.Bump(ctx, product.AccountID); err != nil {
			s.logger.Warn("bump dashboard cache", slog.Any("error", err))
		}
	}
	if s.deps.Audit != nil {
		meta := map[string]any{"delta": result.Movement.Delta, "stock_after": result.Movement.StockAfter}
		if result.Movement.Note != nil {
			meta["note"] = *result.Movement.Note
		}
		if err := s.deps.Audit.Record(ctx, shared.AuditLog{
			AccountID: product.AccountID,
			Action:    "inventory:adjust",
			Entity:    "product",
			EntityID:  product.ID.String(),
			Meta:      meta,
			At:        result.Movement.CreatedAt,
		}); err != nil {
			s.logger.Warn("audit stock adjustment", slog.Any("error", err))
		}
	}
	if result.Movement.Delta < 0 && product.IsLowStock() && s.deps.Events != nil {
		if err := s.deps.Events.PublishStockLow(ctx, stockLowEvent(product)); err != nil {
			s.logger.Warn("publish stock low", slog.Any("error", err), slog.String("product_id", product.ID.String()))
		}
	}
}

// CheckLowStock publishes a stock.low event for every listed product that is
// at or under its minimum and reports how many were found. Empty ids scan
// the whole catalogue.
func (s *Service) CheckLowStock(ctx context.Context, accountID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		ids = nil
	}
	low, err := s.repo.LowStock(ctx, accountID, ids)
	if err != nil {
		return 0, err
	}
	if s.deps.Events == nil {
		return len(low), nil
	}
	for _, p := range low {
		if err := s.deps.Events.PublishStockLow(ctx, stockLowEvent(p)); err != nil {
			return len(low), err
		}
	}
	return len(low), nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
