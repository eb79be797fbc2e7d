// Package facade holds handler facade stubs that depend on usecase types.
package facade

import (
	"context"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	testhelpers "github.com/polkiloo/sweetsbybella/internal/test"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for customer order endpoints.
type OrderFacadeStub struct {
	CreateFn func(context.Context, string, usecase.CreateOrderInput) (*usecase.CreateOrderResult, bool, error)
	OrderFn  func(context.Context, string) (*model.Order, error)
}

func (s OrderFacadeStub) CreateOrder(ctx context.Context, key string, in usecase.CreateOrderInput) (*usecase.CreateOrderResult, bool, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, key, in)
	}
	order := testhelpers.StubOrder("ORDER-1")
	return &usecase.CreateOrderResult{Order: order, Instructions: testhelpers.StubInstructions(order)}, false, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, reference string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, reference)
	}
	return testhelpers.StubOrder(reference), nil
}

func (s OrderFacadeStub) PaymentInstructions(order *model.Order) model.PaymentInstructions {
	return testhelpers.StubInstructions(order)
}

// ShopFacadeStub combines every handler facade stub.
type ShopFacadeStub struct {
	OrderFacadeStub
	*testhelpers.AdminFacadeStub
	*testhelpers.SweepFacadeStub
	testhelpers.HealthFacadeStub
}

// NewShopFacadeStub returns a stub with default behaviour everywhere.
func NewShopFacadeStub() *ShopFacadeStub {
	return &ShopFacadeStub{AdminFacadeStub: &testhelpers.AdminFacadeStub{}, SweepFacadeStub: &testhelpers.SweepFacadeStub{}}
}
