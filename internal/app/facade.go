package app

import (
	"context"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/domain/repository"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// ShopFacade exposes the order lifecycle to the HTTP, worker and lambda layers.
type ShopFacade struct {
	checkout  *usecase.Checkout
	lifecycle *usecase.OrderLifecycle
	admin     *usecase.AdminAuthUseCase
	health    repository.HealthChecker
}

func NewShopFacade(checkout *usecase.Checkout, lifecycle *usecase.OrderLifecycle, admin *usecase.AdminAuthUseCase, health repository.HealthChecker) *ShopFacade {
	return &ShopFacade{checkout: checkout, lifecycle: lifecycle, admin: admin, health: health}
}

func (f *ShopFacade) CreateOrder(ctx context.Context, key string, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, bool, error) {
	return f.checkout.Submit(ctx, key, in)
}

func (f *ShopFacade) Order(ctx context.Context, reference string) (*model.Order, error) {
	return f.lifecycle.GetOrderByReference(ctx, reference)
}

func (f *ShopFacade) PaymentInstructions(order *model.Order) model.PaymentInstructions {
	return f.lifecycle.PaymentInstructions(order)
}

func (f *ShopFacade) Login(ctx context.Context, login, password string) (string, error) {
	return f.admin.Login(ctx, login, password)
}

func (f *ShopFacade) Authorize(token string) (string, error) {
	return f.admin.Authorize(token)
}

func (f *ShopFacade) UpdatePaymentStatus(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus) (*model.Order, error) {
	return f.lifecycle.UpdatePaymentStatus(ctx, reference, to, status)
}

func (f *ShopFacade) UpdateFulfillmentStatus(ctx context.Context, reference string, status model.OrderStatus) (*model.Order, error) {
	return f.lifecycle.UpdateFulfillmentStatus(ctx, reference, status)
}

func (f *ShopFacade) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	return f.lifecycle.ListOrders(ctx, filter)
}

func (f *ShopFacade) RunExpirySweep(ctx context.Context) (model.SweepResult, error) {
	return f.lifecycle.RunExpirySweep(ctx)
}

func (f *ShopFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
