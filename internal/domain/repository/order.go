package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
// Every state-changing method is a conditional write: it only touches rows
// that still hold the expected prior payment status and returns exactly the
// rows it changed.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	InsertItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error
	GetByReference(ctx context.Context, reference string) (*model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	SelectExpired(ctx context.Context, now time.Time) ([]model.Order, error)
	ExpireBatch(ctx context.Context, ids []uuid.UUID, now time.Time) ([]model.Order, error)
	TransitionPayment(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus, now time.Time) (*model.Order, error)
	UpdateFulfillment(ctx context.Context, reference string, status model.OrderStatus, now time.Time) (*model.Order, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
