package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockCheck re-evaluates stock levels after a sale.
	TaskLowStockCheck = "inventory:low_stock_check"
	// TaskIdempotencyCleanup purges expired checkout idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// LowStockCheckPayload names the products touched by a sale.
type LowStockCheckPayload struct {
	AccountID  uuid.UUID   `json:"account_id"`
	ProductIDs []uuid.UUID `json:"product_ids"`
}

// NewLowStockCheckTask constructs an Asynq task for the low stock checker.
func NewLowStockCheckTask(accountID uuid.UUID, productIDs []uuid.UUID) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockCheckPayload{AccountID: accountID, ProductIDs: productIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockCheck, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// IdempotencyCleanupPayload carries the retention window.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

// NewIdempotencyCleanupTask builds the periodic cleanup task.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	body, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}
