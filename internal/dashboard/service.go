package dashboard

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jassiaa29/pos-ventas-simple/internal/masterdata/products"
)

// Service builds dashboards, caching them per account.
type Service struct {
	source Source
	cache  *Cache
	loc    *time.Location
	logger *slog.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService wires a Source with a Cache helper.
func NewService(source Source, cache *Cache, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, cache: cache, loc: loc, logger: logger, now: time.Now}
}

// Get returns the dashboard of the account. Concurrent calls for the same
// account and day share one build.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID, topN int) (Dashboard, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	now := s.now()
	key, err := s.cache.BuildKey(ctx, accountID, dayKey(now, s.loc), strconv.Itoa(topN))
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
		return s.build(ctx, accountID, now, topN)
	}

	ch := s.group.DoChan(key, func() (any, error) {
		var dash Dashboard
		err := s.cache.FetchJSON(context.WithoutCancel(ctx), key, &dash, func(ctx context.Context) (any, error) {
			return s.build(ctx, accountID, now, topN)
		})
		return dash, err
	})
	select {
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Dashboard{}, res.Err
		}
		return res.Val.(Dashboard), nil
	}
}

// Bump invalidates the cached dashboards of the account.
func (s *Service) Bump(ctx context.Context, accountID uuid.UUID) error {
	return s.cache.Bump(ctx, accountID)
}

func (s *Service) build(ctx context.Context, accountID uuid.UUID, now time.Time, topN int) (Dashboard, error) {
	var (
		windowSales []Sale
		recentSales []Sale
		catalogue   []products.Product
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windowSales, err = s.source.SalesBetween(ctx, accountID, WindowStart(now, s.loc), WindowEnd(now, s.loc))
		return err
	})
	g.Go(func() error {
		var err error
		recentSales, err = s.source.RecentSales(ctx, accountID, RecentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		catalogue, err = s.source.Products(ctx, accountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return Build(Input{
		Sales:    windowSales,
		Recent:   recentSales,
		Products: catalogue,
		Now:      now,
		Location: s.loc,
		TopN:     topN,
	}), nil
}
