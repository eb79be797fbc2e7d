package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx/fxtest"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type producerStub struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (p *producerStub) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msgs...)
	return nil
}

func (p *producerStub) Close() error {
	p.closed = true
	return nil
}

func TestPublisherPublish(t *testing.T) {
	producer := &producerStub{}
	publisher := NewPublisher(producer, testLogger())

	event := model.OrderEvent{
		Type:          model.EventOrderPaid,
		OrderID:       uuid.New(),
		Reference:     "ORDER-1",
		PaymentStatus: model.PaymentStatusPaid,
		Status:        model.OrderStatusConfirmed,
		OccurredAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(producer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if string(msg.Key) != "ORDER-1" {
		t.Fatalf("expected reference key, got %q", msg.Key)
	}
	if len(msg.Headers) != 1 || msg.Headers[0].Key != "event_type" || string(msg.Headers[0].Value) != "order.paid" {
		t.Fatalf("unexpected headers: %+v", msg.Headers)
	}
	var decoded model.OrderEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Reference != event.Reference || decoded.OrderID != event.OrderID ||
		decoded.Type != event.Type || !decoded.OccurredAt.Equal(event.OccurredAt) {
		t.Fatalf("payload mismatch: %+v", decoded)
	}

	if err := publisher.Close(); err != nil || !producer.closed {
		t.Fatalf("expected producer to be closed, err=%v", err)
	}
}

func TestPublisherPublishError(t *testing.T) {
	publisher := NewPublisher(&producerStub{err: errors.New("broker down")}, testLogger())
	if err := publisher.Publish(context.Background(), model.OrderEvent{Reference: "ORDER-1"}); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestNewWriter(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "order-events", testLogger())
	if w.Topic != "order-events" || !w.Async {
		t.Fatalf("unexpected writer config: topic=%q async=%v", w.Topic, w.Async)
	}
	if _, ok := w.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("expected hash balancer, got %T", w.Balancer)
	}
}

func TestNewEventPublisher(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	p := newEventPublisher(publisherParams{Lifecycle: lc, Config: &config.Config{}, Logger: testLogger()})
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("expected nop publisher without brokers, got %T", p)
	}
	if err := p.Publish(context.Background(), model.OrderEvent{}); err != nil {
		t.Fatalf("nop publish returned %v", err)
	}

	p = newEventPublisher(publisherParams{
		Lifecycle: lc,
		Config:    &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "order-events"},
		Logger:    testLogger(),
	})
	if _, ok := p.(*Publisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", p)
	}
	lc.RequireStart().RequireStop()
}
