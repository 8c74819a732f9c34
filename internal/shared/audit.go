package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	AccountID uuid.UUID
	Action    string
	Entity    string
	EntityID  string
	Meta      map[string]any
	At        time.Time
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool execer
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool execer) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.Meta == nil {
		log.Meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (account_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.AccountID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	return err
}

// AuditRecorder stores audit rows; *AuditLogger implements it.
type AuditRecorder interface {
	Record(ctx context.Context, log AuditLog) error
}

// RecordAudit writes log through rec after a committed mutation. A nil rec
// disables auditing and failures are only logged.
func RecordAudit(ctx context.Context, rec AuditRecorder, logger *slog.Logger, log AuditLog) {
	if rec == nil {
		return
	}
	if err := rec.Record(context.WithoutCancel(ctx), log); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("record audit log", slog.Any("error", err), slog.String("action", log.Action), slog.String("entity_id", log.EntityID))
	}
}
