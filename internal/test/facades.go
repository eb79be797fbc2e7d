package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// StubOrder is the order returned by facade stubs without overrides.
func StubOrder(reference string) *model.Order {
	created := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	return &model.Order{
		Reference:     reference,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		PaymentMethod: model.PaymentMethodZelle,
		TotalAmount:   decimal.RequireFromString("10.00"),
		CustomerName:  "Ann",
		OrderType:     model.OrderTypePickup,
		Items: []model.OrderItem{
			{ProductName: "Brownie", ProductPrice: decimal.RequireFromString("5.00"), Quantity: 2},
		},
		ExpiresAt: created.Add(5 * time.Minute),
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// PaymentUpdateCall records one UpdatePaymentStatus invocation.
type PaymentUpdateCall struct {
	Reference string
	To        model.PaymentStatus
	Status    model.OrderStatus
}

// AdminFacadeStub simulates the admin dashboard operations.
type AdminFacadeStub struct {
	LoginFn       func(context.Context, string, string) (string, error)
	AuthorizeFn   func(string) (string, error)
	PaymentFn     func(context.Context, string, model.PaymentStatus, model.OrderStatus) (*model.Order, error)
	FulfillmentFn func(context.Context, string, model.OrderStatus) (*model.Order, error)
	ListFn        func(context.Context, model.OrderFilter) ([]model.Order, error)

	mu       sync.Mutex
	payments []PaymentUpdateCall
}

func (s *AdminFacadeStub) Login(ctx context.Context, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, login, password)
	}
	return "token:" + login, nil
}

// Authorize accepts "token:admin" unless overridden.
func (s *AdminFacadeStub) Authorize(token string) (string, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(token)
	}
	return StrategyStub{}.ParseToken(token)
}

func (s *AdminFacadeStub) UpdatePaymentStatus(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	s.payments = append(s.payments, PaymentUpdateCall{Reference: reference, To: to, Status: status})
	s.mu.Unlock()
	if s.PaymentFn != nil {
		return s.PaymentFn(ctx, reference, to, status)
	}
	order := StubOrder(reference)
	order.PaymentStatus = to
	if status == "" {
		status = model.OrderStatusConfirmed
	}
	order.Status = status
	return order, nil
}

func (s *AdminFacadeStub) UpdateFulfillmentStatus(ctx context.Context, reference string, status model.OrderStatus) (*model.Order, error) {
	if s.FulfillmentFn != nil {
		return s.FulfillmentFn(ctx, reference, status)
	}
	order := StubOrder(reference)
	order.PaymentStatus = model.PaymentStatusPaid
	order.Status = status
	return order, nil
}

func (s *AdminFacadeStub) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	return []model.Order{*StubOrder("ORDER-1")}, nil
}

// Payments returns recorded payment updates.
func (s *AdminFacadeStub) Payments() []PaymentUpdateCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PaymentUpdateCall(nil), s.payments...)
}

// SweepFacadeStub counts sweep runs.
type SweepFacadeStub struct {
	SweepFn func(context.Context) (model.SweepResult, error)

	calls int32
}

func (s *SweepFacadeStub) RunExpirySweep(ctx context.Context) (model.SweepResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.SweepFn != nil {
		return s.SweepFn(ctx)
	}
	return model.SweepResult{CancelledOrders: []model.Order{}}, nil
}

// Calls returns the number of sweeps run so far.
func (s *SweepFacadeStub) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

// HealthFacadeStub reports Err from Health.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) Health(context.Context) error {
	return s.Err
}

// StubInstructions mirrors the composer output for order.
func StubInstructions(order *model.Order) model.PaymentInstructions {
	return model.PaymentInstructions{
		Method:    order.PaymentMethod,
		Recipient: "pay@example.com",
		Amount:    order.TotalAmount,
		Note:      order.Reference,
		Deadline:  order.ExpiresAt,
	}
}

