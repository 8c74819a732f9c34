package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/jassiaa29/pos-ventas-simple/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StockChecker publishes stock.low alerts for the given products.
type StockChecker interface {
	CheckLowStock(ctx context.Context, accountID uuid.UUID, productIDs []uuid.UUID) (int, error)
}

// LowStockCheckJob handles TaskLowStockCheck.
type LowStockCheckJob struct {
	Checker StockChecker
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockCheckJob wires dependencies for the checker handler.
func NewLowStockCheckJob(checker StockChecker, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockCheckJob {
	return &LowStockCheckJob{Checker: checker, Logger: logger, Metrics: metrics}
}

// Handle executes one low stock check.
func (j *LowStockCheckJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Checker == nil {
		return errors.New("low stock check: handler not configured")
	}
	var payload LowStockCheckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.AccountID == uuid.Nil {
		return asynq.SkipRetry
	}

	start := time.Now()
	tracker := j.metrics().Track(TaskLowStockCheck)
	logger := j.logger().With(
		slog.String("account_id", payload.AccountID.String()),
		slog.Int("products", len(payload.ProductIDs)),
	)

	alerts, err := j.Checker.CheckLowStock(ctx, payload.AccountID, payload.ProductIDs)
	if err != nil {
		logger.Error("low stock check failed", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddLowStockAlerts(alerts)
	logger.Info("completed low stock check",
		slog.Int("alerts", alerts),
		slog.Duration("duration", time.Since(start)),
	)
	return tracker.End(nil)
}

func (j *LowStockCheckJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockCheck))
	}
	return slog.Default().With(slog.String("job", TaskLowStockCheck))
}

func (j *LowStockCheckJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
