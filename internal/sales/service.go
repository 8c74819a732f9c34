package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jassiaa29/pos-ventas-simple/internal/events"
	"github.com/jassiaa29/pos-ventas-simple/internal/money"
	"github.com/jassiaa29/pos-ventas-simple/internal/platform/httpx"
	"github.com/jassiaa29/pos-ventas-simple/internal/shared"
)

const idempotencyModule = "sales.checkout"

// IdempotencyStore guards checkouts against replays.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// JobEnqueuer schedules background work after a sale.
type JobEnqueuer interface {
	EnqueueLowStockCheck(ctx context.Context, accountID uuid.UUID, productIDs []uuid.UUID) error
}

// CacheInvalidator drops cached aggregates of an account.
type CacheInvalidator interface {
	Bump(ctx context.Context, accountID uuid.UUID) error
}

// ServiceDeps groups optional collaborators of Service. Nil members are skipped.
type ServiceDeps struct {
	Idempotency IdempotencyStore
	Audit       AuditRecorder
	Events      events.Publisher
	Jobs        JobEnqueuer
	Cache       CacheInvalidator
	Receipts    *ReceiptRenderer
	Logger      *slog.Logger
}

// Service provides business logic for sales operations.
type Service struct {
	repo     Repository
	deps     ServiceDeps
	logger   *slog.Logger
	receipts *ReceiptRenderer
	now      func() time.Time
}

// NewService constructs a sales service.
func NewService(repo Repository, deps ServiceDeps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	receipts := deps.Receipts
	if receipts == nil {
		receipts = NewReceiptRenderer(nil, nil)
	}
	return &Service{
		repo:     repo,
		deps:     deps,
		logger:   logger.With(slog.String("component", "sales")),
		receipts: receipts,
		now:      time.Now,
	}
}

// Checkout persists a sale: header, items and stock decrements commit
// together or not at all.
func (s *Service) Checkout(ctx context.Context, accountID uuid.UUID, req CheckoutRequest) (*Sale, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	idemKey := ""
	if req.IdempotencyKey != "" && s.deps.Idempotency != nil {
		idemKey = accountID.String() + ":" + req.IdempotencyKey
		if err := s.deps.Idempotency.CheckAndInsert(ctx, idemKey, idempotencyModule); err != nil {
			return nil, err
		}
	}

	sale, err := s.persist(ctx, accountID, req)
	if err != nil {
		if idemKey != "" {
			if delErr := s.deps.Idempotency.Delete(context.WithoutCancel(ctx), idemKey); delErr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		return nil, err
	}

	s.afterCheckout(ctx, sale)
	return sale, nil
}

func (s *Service) persist(ctx context.Context, accountID uuid.UUID, req CheckoutRequest) (*Sale, error) {
	var sale *Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		products, err := tx.LockProducts(ctx, accountID, lineProductIDs(req.Lines))
		if err != nil {
			return err
		}
		lines, items, err := priceLines(req.Lines, products)
		if err != nil {
			return err
		}
		totals, err := ComputeTotals(lines, req.GlobalDiscountPercent)
		if err != nil {
			return err
		}
		change, err := ChangeDue(req.PaymentMethod, req.CashReceived, totals.Total)
		if err != nil {
			return err
		}
		if req.CustomerID != nil {
			ok, err := tx.CustomerExists(ctx, accountID, *req.CustomerID)
			if err != nil {
				return fmt.Errorf("check customer: %w", err)
			}
			if !ok {
				return httpx.NewValidationError("customer_id", "unknown customer")
			}
		}

		now := s.now()
		sale = &Sale{
			AccountID:             accountID,
			SaleNumber:            NextSaleNumber(ctx, tx, accountID, now, s.logger),
			CustomerID:            req.CustomerID,
			Subtotal:              totals.Subtotal,
			ItemDiscountAmount:    totals.ItemDiscounts,
			GlobalDiscountPercent: totals.GlobalDiscountPercent,
			GlobalDiscountAmount:  totals.GlobalDiscountAmount,
			TotalAmount:           totals.Total,
			PaymentMethod:         req.PaymentMethod,
			ChangeDue:             change,
			Status:                StatusCompleted,
			Notes:                 req.Notes,
			SaleDate:              now,
		}
		if req.PaymentMethod == PaymentCash {
			cash := money.Round(*req.CashReceived)
			sale.CashReceived = &cash
		}
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, sale.ID, items); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := tx.DecrementStock(ctx, accountID, *it.ProductID, it.Quantity, sale.SaleNumber); err != nil {
				return err
			}
		}
		sale.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// priceLines snapshots the current price and name of each product and
// checks that every product can still be sold in the requested quantity.
func priceLines(req []CheckoutLine, products map[uuid.UUID]ProductSnapshot) ([]Line, []SaleItem, error) {
	lines := make([]Line, 0, len(req))
	items := make([]SaleItem, 0, len(req))
	for _, l := range req {
		p, ok := products[l.ProductID]
		if !ok || !p.Active {
			return nil, nil, fmt.Errorf("%w: %s", ErrProductUnavailable, l.ProductID)
		}
		if p.Stock < l.Quantity {
			return nil, nil, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, p.Name, p.Stock)
		}
		line := Line{UnitPrice: p.Price, Quantity: l.Quantity, DiscountPercent: money.ClampPercent(l.DiscountPercent)}
		lt := CalculateLineTotals(line)
		productID := p.ID
		lines = append(lines, line)
		items = append(items, SaleItem{
			ProductID:       &productID,
			ProductName:     p.Name,
			ProductSKU:      p.SKU,
			Quantity:        l.Quantity,
			UnitPrice:       p.Price,
			DiscountPercent: line.DiscountPercent,
			DiscountAmount:  lt.Discount,
			Subtotal:        lt.Gross,
		})
	}
	return lines, items, nil
}

func (s *Service) afterCheckout(ctx context.Context, sale *Sale) {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(slog.String("sale_id", sale.ID.String()), slog.String("sale_number", sale.SaleNumber))

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Bump(ctx, sale.AccountID); err != nil {
			log.Warn("invalidate dashboard cache", slog.Any("error", err))
		}
	}
	if s.deps.Events != nil {
		if err := s.deps.Events.PublishSaleCompleted(ctx, saleCompletedEvent(sale)); err != nil {
			log.Warn("publish sale event", slog.Any("error", err))
		}
	}
	if s.deps.Jobs != nil {
		ids := make([]uuid.UUID, 0, len(sale.Items))
		for _, it := range sale.Items {
			if it.ProductID != nil {
				ids = append(ids, *it.ProductID)
			}
		}
		if err := s.deps.Jobs.EnqueueLowStockCheck(ctx, sale.AccountID, ids); err != nil {
			log.Warn("enqueue low stock check", slog.Any("error", err))
		}
	}
	if s.deps.Audit != nil {
		err := s.deps.Audit.Record(ctx, shared.AuditLog{
			AccountID: sale.AccountID,
			Action:    "sale.completed",
			Entity:    "sale",
			EntityID:  sale.ID.String(),
			Meta: map[string]any{
				"sale_number":    sale.SaleNumber,
				"total_amount":   sale.TotalAmount.StringFixed(money.Places),
				"payment_method": string(sale.PaymentMethod),
				"items":          len(sale.Items),
			},
		})
		if err != nil {
			log.Warn("record audit log", slog.Any("error", err))
		}
	}
	log.Info("sale completed", slog.String("total", sale.TotalAmount.StringFixed(money.Places)))
}

func saleCompletedEvent(sale *Sale) events.SaleCompleted {
	items := make([]events.SaleItem, 0, len(sale.Items))
	for _, it := range sale.Items {
		item := events.SaleItem{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(money.Places),
			Subtotal:  it.Subtotal.StringFixed(money.Places),
		}
		if it.ProductID != nil {
			item.ProductID = it.ProductID.String()
		}
		items = append(items, item)
	}
	return events.SaleCompleted{
		AccountID:     sale.AccountID,
		SaleID:        sale.ID,
		SaleNumber:    sale.SaleNumber,
		Total:         sale.TotalAmount.StringFixed(money.Places),
		PaymentMethod: string(sale.PaymentMethod),
		CustomerID:    sale.CustomerID,
		Items:         items,
		OccurredAt:    sale.SaleDate,
	}
}

// Quote prices lines at current product prices without persisting anything.
func (s *Service) Quote(ctx context.Context, accountID uuid.UUID, lines []CheckoutLine, globalDiscount decimal.Decimal) (Totals, error) {
	if len(lines) == 0 {
		return ComputeTotals(nil, globalDiscount)
	}
	products, err := s.repo.ProductSnapshots(ctx, accountID, lineProductIDs(lines))
	if err != nil {
		return Totals{}, err
	}
	priced := make([]Line, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return Totals{}, fmt.Errorf("%w: %s", ErrProductUnavailable, l.ProductID)
		}
		if l.Quantity <= 0 {
			return Totals{}, httpx.NewValidationError("quantity", "must be greater than 0")
		}
		priced = append(priced, Line{UnitPrice: p.Price, Quantity: l.Quantity, DiscountPercent: l.DiscountPercent})
	}
	return ComputeTotals(priced, globalDiscount)
}

// List returns sales newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID, filter ListFilter) ([]Sale, shared.Pagination, error) {
	if filter.PaymentMethod != "" && !filter.PaymentMethod.Valid() {
		return nil, shared.Pagination{}, httpx.NewValidationError("payment_method", "must be one of cash card")
	}
	sales, total, err := s.repo.List(ctx, accountID, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	if sales == nil {
		sales = []Sale{}
	}
	return sales, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get returns one sale with its items.
func (s *Service) Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, accountID, id)
}

// ProductSnapshot loads one product for the cart.
func (s *Service) ProductSnapshot(ctx context.Context, accountID, productID uuid.UUID) (ProductSnapshot, error) {
	products, err := s.repo.ProductSnapshots(ctx, accountID, []uuid.UUID{productID})
	if err != nil {
		return ProductSnapshot{}, err
	}
	p, ok := products[productID]
	if !ok {
		return ProductSnapshot{}, fmt.Errorf("product: %w", httpx.ErrNotFound)
	}
	return p, nil
}

// ScanCandidates returns the products whose SKU may equal code.
func (s *Service) ScanCandidates(ctx context.Context, accountID uuid.UUID, code string) ([]ProductSnapshot, error) {
	return s.repo.ProductsBySKU(ctx, accountID, code)
}

func validateCheckout(req CheckoutRequest) error {
	if len(req.Lines) == 0 {
		return ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return httpx.NewValidationError("payment_method", "must be one of cash card")
	}
	if !money.ValidPercent(req.GlobalDiscountPercent) {
		return httpx.NewValidationError("global_discount_percent", "must be between 0 and 100")
	}
	seen := make(map[uuid.UUID]struct{}, len(req.Lines))
	for _, l := range req.Lines {
		if l.ProductID == uuid.Nil {
			return httpx.NewValidationError("product_id", "is required")
		}
		if l.Quantity <= 0 {
			return httpx.NewValidationError("quantity", "must be greater than 0")
		}
		if _, dup := seen[l.ProductID]; dup {
			return httpx.NewValidationError("items", "each product may appear once")
		}
		seen[l.ProductID] = struct{}{}
	}
	if req.PaymentMethod == PaymentCash && req.CashReceived == nil {
		return ErrInsufficientCash
	}
	if req.CashReceived != nil && req.CashReceived.IsNegative() {
		return httpx.NewValidationError("cash_received", "must not be negative")
	}
	return nil
}

func lineProductIDs(lines []CheckoutLine) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}
