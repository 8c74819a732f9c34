// Package events publishes domain events to Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventSaleCompleted = "sale.completed"
	EventStockLow      = "stock.low"

	producerName = "pos-api"
)

// Envelope wraps every payload published to the topic.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	AccountID     string          `json:"account_id"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// SaleItem is one line of a SaleCompleted payload.
type SaleItem struct {
	ProductID string `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// SaleCompleted is published after a checkout commits.
type SaleCompleted struct {
	AccountID     uuid.UUID  `json:"account_id"`
	SaleID        uuid.UUID  `json:"sale_id"`
	SaleNumber    string     `json:"sale_number"`
	Total         string     `json:"total"`
	PaymentMethod string     `json:"payment_method"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	Items         []SaleItem `json:"items"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// StockLow is published by the worker when a product reaches its minimum.
type StockLow struct {
	AccountID uuid.UUID `json:"account_id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
}

// Publisher is implemented by KafkaPublisher and Nop.
type Publisher interface {
	PublishSaleCompleted(ctx context.Context, evt SaleCompleted) error
	PublishStockLow(ctx context.Context, evt StockLow) error
}

func newEnvelope(eventType string, accountID uuid.UUID, correlationID string, payload any, now time.Time) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now.UTC(),
		Producer:      producerName,
		AccountID:     accountID.String(),
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) PublishSaleCompleted(context.Context, SaleCompleted) error { return nil }
func (Nop) PublishStockLow(context.Context, StockLow) error           { return nil }
