package handlers

import (
	"context"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// OrderFacade describes customer checkout operations.
type OrderFacade interface {
	CreateOrder(ctx context.Context, idempotencyKey string, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, bool, error)
	Order(ctx context.Context, reference string) (*model.Order, error)
	PaymentInstructions(order *model.Order) model.PaymentInstructions
}

// AdminFacade covers the shop dashboard.
type AdminFacade interface {
	Login(ctx context.Context, login, password string) (string, error)
	Authorize(token string) (string, error)
	UpdatePaymentStatus(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus) (*model.Order, error)
	UpdateFulfillmentStatus(ctx context.Context, reference string, status model.OrderStatus) (*model.Order, error)
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
}

// SweepFacade triggers the expiry sweep.
type SweepFacade interface {
	RunExpirySweep(ctx context.Context) (model.SweepResult, error)
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// ShopFacade aggregates every operation used across handlers.
type ShopFacade interface {
	OrderFacade
	AdminFacade
	SweepFacade
	HealthFacade
}
