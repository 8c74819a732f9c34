package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrBufferFull is returned when the outbound buffer cannot take more events.
var ErrBufferFull = errors.New("events: publish buffer full")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("events: publisher closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events in memory and writes them from one goroutine.
// Messages are keyed by account so an account's events stay ordered.
type KafkaPublisher struct {
	w      messageWriter
	inbox  chan kafka.Message
	done   chan struct{}
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher builds a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, buf int, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("kafka write failed", slog.Int("messages", len(messages)), slog.Any("error", err))
			}
		},
	}
	return newKafkaPublisher(w, buf, logger)
}

func newKafkaPublisher(w messageWriter, buf int, logger *slog.Logger) *KafkaPublisher {
	if buf <= 0 {
		buf = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaPublisher{
		w:      w,
		inbox:  make(chan kafka.Message, buf),
		done:   make(chan struct{}),
		logger: logger,
		now:    time.Now,
	}
}

// Start runs the write loop until Close drains the buffer.
func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.done)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.logger.Warn("publish event", slog.String("key", string(m.Key)), slog.Any("error", err))
			}
		}
		if err := p.w.Close(); err != nil {
			p.logger.Warn("close kafka writer", slog.Any("error", err))
		}
	}()
}

// Close stops accepting events, flushes the buffer and waits for the loop
// to exit or ctx to end.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishSaleCompleted enqueues a sale.completed event.
func (p *KafkaPublisher) PublishSaleCompleted(ctx context.Context, evt SaleCompleted) error {
	env, err := newEnvelope(EventSaleCompleted, evt.AccountID, evt.SaleID.String(), evt, p.now())
	if err != nil {
		return fmt.Errorf("encode sale event: %w", err)
	}
	return p.publish(evt.AccountID.String(), env)
}

// PublishStockLow enqueues a stock.low event.
func (p *KafkaPublisher) PublishStockLow(ctx context.Context, evt StockLow) error {
	env, err := newEnvelope(EventStockLow, evt.AccountID, evt.ProductID.String(), evt, p.now())
	if err != nil {
		return fmt.Errorf("encode stock event: %w", err)
	}
	return p.publish(evt.AccountID.String(), env)
}

func (p *KafkaPublisher) publish(key string, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}
