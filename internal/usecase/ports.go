package usecase

import (
	"context"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// Notifier delivers one rendered email. Failures never roll back a transition.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Outbox accepts post-commit notifications for asynchronous delivery.
// Enqueue reports false when the message was dropped.
type Outbox interface {
	Enqueue(msg model.Notification) bool
}

// MessageComposer renders customer and admin emails for an order.
type MessageComposer interface {
	OrderConfirmation(order *model.Order) (model.Notification, error)
	AdminNewOrder(order *model.Order) (model.Notification, error)
	PaymentReceived(order *model.Order) (model.Notification, error)
	OrderExpired(order *model.Order) (model.Notification, error)
	Instructions(order *model.Order) model.PaymentInstructions
}

// EventPublisher streams committed lifecycle transitions.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// SweepRecorder receives the outcome of every sweep run.
type SweepRecorder interface {
	RecordSweep(ctx context.Context, result model.SweepResult)
}

// IdempotencyStore remembers which order a client retry token produced.
// Reserve returns reserved=true when the caller owns the key, or the stored
// order reference once a previous request completed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (reference string, reserved bool, err error)
	Complete(ctx context.Context, key, reference string) error
	Release(ctx context.Context, key string) error
}
