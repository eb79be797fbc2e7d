package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// OrderRepositoryStub keeps orders in memory and applies every conditional
// write under one mutex, the way a single database row lock would.
type OrderRepositoryStub struct {
	CreateFn      func(context.Context, *model.Order) error
	InsertItemsFn func(context.Context, uuid.UUID, []model.OrderItem) error
	GetFn         func(context.Context, string) (*model.Order, error)
	ListFn        func(context.Context, model.OrderFilter) ([]model.Order, error)
	SelectFn      func(context.Context, time.Time) ([]model.Order, error)
	ExpireFn      func(context.Context, []uuid.UUID, time.Time) ([]model.Order, error)
	TransitionFn  func(context.Context, string, model.PaymentStatus, model.OrderStatus, time.Time) (*model.Order, error)

	// BeforeExpire runs after candidates are selected and before the batch write.
	BeforeExpire func()

	mu          sync.Mutex
	orders      map[string]*model.Order
	CreateCalls int
	ExpireCalls int
}

// NewOrderRepositoryStub constructs an empty repository.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{orders: make(map[string]*model.Order)}
}

// Seed stores a copy of order as-is.
func (s *OrderRepositoryStub) Seed(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.Reference] = &order
}

// Snapshot returns a copy of the stored order.
func (s *OrderRepositoryStub) Snapshot(reference string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[reference]
	if !ok {
		return model.Order{}, false
	}
	return cloneOrder(o), true
}

// Len returns the number of stored orders.
func (s *OrderRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) error {
	s.mu.Lock()
	s.CreateCalls++
	s.mu.Unlock()
	if s.CreateFn != nil {
		if err := s.CreateFn(ctx, order); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	if _, exists := s.orders[order.Reference]; exists {
		return domainErrors.ErrAlreadyExists
	}
	stored := cloneOrder(order)
	stored.Items = nil
	s.orders[order.Reference] = &stored
	return nil
}

func (s *OrderRepositoryStub) InsertItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	if s.InsertItemsFn != nil {
		if err := s.InsertItemsFn(ctx, orderID, items); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == orderID {
			for i, item := range items {
				item.ID = int64(len(o.Items) + i + 1)
				item.OrderID = orderID
				o.Items = append(o.Items, item)
			}
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

func (s *OrderRepositoryStub) GetByReference(ctx context.Context, reference string) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, reference)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[reference]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (s *OrderRepositoryStub) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if filter.PaymentStatus != "" && o.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *OrderRepositoryStub) SelectExpired(ctx context.Context, now time.Time) ([]model.Order, error) {
	if s.SelectFn != nil {
		return s.SelectFn(ctx, now)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.PaymentStatus == model.PaymentStatusPending && o.ExpiresAt.Before(now) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (s *OrderRepositoryStub) ExpireBatch(ctx context.Context, ids []uuid.UUID, now time.Time) ([]model.Order, error) {
	if s.BeforeExpire != nil {
		s.BeforeExpire()
	}
	if s.ExpireFn != nil {
		return s.ExpireFn(ctx, ids, now)
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExpireCalls++
	var out []model.Order
	for _, o := range s.orders {
		if !wanted[o.ID] || o.PaymentStatus != model.PaymentStatusPending {
			continue
		}
		o.PaymentStatus = model.PaymentStatusExpired
		o.Status = model.OrderStatusCancelled
		o.UpdatedAt = now
		c := cloneOrder(o)
		c.Items = nil
		out = append(out, c)
	}
	return out, nil
}

func (s *OrderRepositoryStub) TransitionPayment(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus, now time.Time) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, reference, to, status, now)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[reference]
	if !ok || o.PaymentStatus != model.PaymentStatusPending {
		return nil, domainErrors.ErrNotFound
	}
	o.PaymentStatus = to
	o.Status = status
	o.UpdatedAt = now
	c := cloneOrder(o)
	c.Items = nil
	return &c, nil
}

func (s *OrderRepositoryStub) UpdateFulfillment(ctx context.Context, reference string, status model.OrderStatus, now time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[reference]
	if !ok || o.PaymentStatus != model.PaymentStatusPaid {
		return nil, domainErrors.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = now
	c := cloneOrder(o)
	c.Items = nil
	return &c, nil
}

func cloneOrder(o *model.Order) model.Order {
	c := *o
	if o.Items != nil {
		c.Items = append([]model.OrderItem(nil), o.Items...)
	}
	if o.DeliveryAddress != nil {
		addr := *o.DeliveryAddress
		c.DeliveryAddress = &addr
	}
	return c
}

// HealthCheckerStub reports a configured error.
type HealthCheckerStub struct {
	Err error
}

func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}
