package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
}

func (w *memoryWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *memoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func TestKafkaPublisherFlushesOnClose(t *testing.T) {
	w := &memoryWriter{}
	p := newKafkaPublisher(w, 8, nil)
	p.Start()

	accountID := uuid.New()
	saleID := uuid.New()
	require.NoError(t, p.PublishSaleCompleted(context.Background(), SaleCompleted{
		AccountID:  accountID,
		SaleID:     saleID,
		SaleNumber: "V001",
		Total:      "171.00",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Close(ctx))

	require.Len(t, w.messages, 1)
	assert.True(t, w.closed)
	assert.Equal(t, accountID.String(), string(w.messages[0].Key))

	var env Envelope
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &env))
	assert.Equal(t, EventSaleCompleted, env.EventType)
	assert.Equal(t, saleID.String(), env.CorrelationID)

	var payload SaleCompleted
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "V001", payload.SaleNumber)
}

func TestKafkaPublisherRejectsWhenFullOrClosed(t *testing.T) {
	p := newKafkaPublisher(&memoryWriter{}, 1, nil)
	evt := StockLow{AccountID: uuid.New(), ProductID: uuid.New(), Stock: 1, MinStock: 5}

	require.NoError(t, p.PublishStockLow(context.Background(), evt))
	assert.ErrorIs(t, p.PublishStockLow(context.Background(), evt), ErrBufferFull)

	p.Start()
	require.NoError(t, p.Close(context.Background()))
	assert.ErrorIs(t, p.PublishStockLow(context.Background(), evt), ErrClosed)
}
