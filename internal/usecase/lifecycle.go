package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/sweetsbybella/internal/config"
	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/domain/repository"
)

const (
	maxReferenceAttempts = 3
	maxListLimit         = 500
	expiryNotifyTimeout  = 30 * time.Second
)

// CreateOrderResult is returned to the customer right after checkout.
type CreateOrderResult struct {
	Order        *model.Order
	Instructions model.PaymentInstructions
}

// LifecycleParams lists OrderLifecycle dependencies.
type LifecycleParams struct {
	fx.In

	Config   *config.Config
	Orders   repository.OrderRepository
	Composer MessageComposer
	Notifier Notifier
	Outbox   Outbox
	Events   EventPublisher
	Metrics  SweepRecorder
	Logger   *slog.Logger
}

// OrderLifecycle owns the payment state machine of an order and the expiry sweep.
// It holds no locks: every transition is a conditional write in the store.
type OrderLifecycle struct {
	orders    repository.OrderRepository
	composer  MessageComposer
	notifier  Notifier
	outbox    Outbox
	events    EventPublisher
	metrics   SweepRecorder
	logger    *slog.Logger
	validator *InputValidator

	paymentWindow     time.Duration
	notifyConcurrency int
	notifyTimeout     time.Duration

	now          func() time.Time
	newReference func(time.Time) string
}

// NewOrderLifecycle constructs OrderLifecycle.
func NewOrderLifecycle(p LifecycleParams) *OrderLifecycle {
	concurrency := p.Config.SweepNotifyConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &OrderLifecycle{
		orders:            p.Orders,
		composer:          p.Composer,
		notifier:          p.Notifier,
		outbox:            p.Outbox,
		events:            p.Events,
		metrics:           p.Metrics,
		logger:            p.Logger,
		validator:         NewInputValidator(),
		paymentWindow:     p.Config.PaymentWindow,
		notifyConcurrency: concurrency,
		notifyTimeout:     expiryNotifyTimeout,
		now:               time.Now,
		newReference:      newOrderReference,
	}
}

// newOrderReference builds ORDER-<unix millis>-<12 hex chars of a random UUID>.
func newOrderReference(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("ORDER-%d-%s", now.UnixMilli(), strings.ToUpper(token[:12]))
}

func storeError(err error) error {
	return fmt.Errorf("%w: %w", domainErrors.ErrStoreUnavailable, err)
}

// CreateOrder validates input, persists a pending order and schedules confirmation emails.
// Item persistence and notifications are best-effort.
func (u *OrderLifecycle) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if err := u.validator.ValidateCreateOrder(in); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	items := make([]model.OrderItem, 0, len(in.Items))
	total := decimal.Zero
	for _, it := range in.Items {
		item := model.OrderItem{
			ProductName:  strings.TrimSpace(it.ProductName),
			ProductPrice: it.ProductPrice.Round(2),
			Quantity:     it.Quantity,
			ProductImage: it.ProductImage,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	order := &model.Order{
		ID:                   uuid.New(),
		Status:               model.OrderStatusPending,
		PaymentStatus:        model.PaymentStatusPending,
		PaymentMethod:        in.PaymentMethod,
		TotalAmount:          total,
		CustomerName:         strings.TrimSpace(in.CustomerName),
		CustomerEmail:        strings.TrimSpace(in.CustomerEmail),
		CustomerPhone:        strings.TrimSpace(in.CustomerPhone),
		OrderType:            in.OrderType,
		DeliveryInstructions: in.DeliveryInstructions,
		ExpiresAt:            now.Add(u.paymentWindow),
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if in.OrderType == model.OrderTypeDelivery {
		order.DeliveryAddress = in.DeliveryAddress
	}

	if err := u.insertWithReference(ctx, order, now); err != nil {
		return nil, err
	}

	if err := u.orders.InsertItems(ctx, order.ID, items); err != nil {
		u.logger.Warn("order items not persisted",
			slog.String("order_reference", order.Reference),
			slog.Int("items", len(items)),
			slog.String("error", err.Error()),
		)
	} else {
		order.Items = items
	}

	u.enqueue(order, model.NotificationOrderConfirmation)
	u.enqueue(order, model.NotificationAdminNewOrder)
	u.publish(ctx, model.EventOrderCreated, order, now)

	u.logger.Info("order created",
		slog.String("order_reference", order.Reference),
		slog.String("total_amount", order.TotalAmount.StringFixed(2)),
		slog.Time("expires_at", order.ExpiresAt),
	)

	return &CreateOrderResult{Order: order, Instructions: u.composer.Instructions(order)}, nil
}

func (u *OrderLifecycle) insertWithReference(ctx context.Context, order *model.Order, now time.Time) error {
	var err error
	for attempt := 0; attempt < maxReferenceAttempts; attempt++ {
		order.Reference = u.newReference(now)
		err = u.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			return storeError(err)
		}
		u.logger.Warn("order reference collision", slog.String("order_reference", order.Reference))
	}
	return storeError(fmt.Errorf("allocate order reference: %w", err))
}

// UpdatePaymentStatus moves a pending order to paid or expired.
// Repeating the transition an order already holds is a no-op.
func (u *OrderLifecycle) UpdatePaymentStatus(ctx context.Context, reference string, to model.PaymentStatus, status model.OrderStatus) (*model.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, &domainErrors.ValidationError{Fields: map[string]string{"order_reference": "is required"}}
	}

	status, err := resolvePaymentTarget(to, status)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	order, err := u.orders.TransitionPayment(ctx, reference, to, status, now)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return u.resolveLostTransition(ctx, reference, to)
	}
	if err != nil {
		return nil, storeError(err)
	}

	switch to {
	case model.PaymentStatusPaid:
		u.enqueue(order, model.NotificationPaymentReceived)
		u.publish(ctx, model.EventOrderPaid, order, now)
	case model.PaymentStatusExpired:
		u.enqueue(order, model.NotificationOrderExpired)
		u.publish(ctx, model.EventOrderExpired, order, now)
	}

	u.logger.Info("payment status updated",
		slog.String("order_reference", order.Reference),
		slog.String("payment_status", string(order.PaymentStatus)),
		slog.String("status", string(order.Status)),
	)
	return order, nil
}

func resolvePaymentTarget(to model.PaymentStatus, status model.OrderStatus) (model.OrderStatus, error) {
	switch to {
	case model.PaymentStatusPaid:
		if status == "" {
			return model.OrderStatusConfirmed, nil
		}
		if !status.Valid() || status == model.OrderStatusPending || status == model.OrderStatusCancelled {
			return "", fmt.Errorf("%w: paid order cannot be %q", domainErrors.ErrInvalidTransition, status)
		}
		return status, nil
	case model.PaymentStatusExpired:
		if status != "" && status != model.OrderStatusCancelled {
			return "", fmt.Errorf("%w: expired order must be cancelled", domainErrors.ErrInvalidTransition)
		}
		return model.OrderStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: payment status cannot move to %q", domainErrors.ErrInvalidTransition, to)
	}
}

// resolveLostTransition explains why a conditional payment write matched no rows.
func (u *OrderLifecycle) resolveLostTransition(ctx context.Context, reference string, to model.PaymentStatus) (*model.Order, error) {
	current, err := u.orders.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, storeError(err)
	}

	if current.PaymentStatus == to {
		u.logger.Info("payment status already applied",
			slog.String("order_reference", reference),
			slog.String("payment_status", string(to)),
		)
		return current, nil
	}

	u.logger.Info("payment transition lost to terminal state",
		slog.String("order_reference", reference),
		slog.String("requested", string(to)),
		slog.String("current", string(current.PaymentStatus)),
	)
	return nil, fmt.Errorf("%w: order %s is %s", domainErrors.ErrAlreadyTerminal, reference, current.PaymentStatus)
}

// GetOrderByReference returns the order with its items.
func (u *OrderLifecycle) GetOrderByReference(ctx context.Context, reference string) (*model.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, &domainErrors.ValidationError{Fields: map[string]string{"order_reference": "is required"}}
	}
	order, err := u.orders.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, storeError(err)
	}
	return order, nil
}

// RunExpirySweep cancels every pending order whose deadline has passed and
// notifies each cancelled customer once. Safe to run concurrently from
// independent processes.
func (u *OrderLifecycle) RunExpirySweep(ctx context.Context) (model.SweepResult, error) {
	now := u.now().UTC()
	result := model.SweepResult{RanAt: now, CancelledOrders: []model.Order{}}

	candidates, err := u.orders.SelectExpired(ctx, now)
	if err != nil {
		u.logger.Error("select expired orders failed", slog.String("error", err.Error()))
		return model.SweepResult{}, storeError(err)
	}
	if len(candidates) == 0 {
		u.record(ctx, result)
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	expired, err := u.orders.ExpireBatch(ctx, ids, now)
	if err != nil {
		u.logger.Error("expire batch failed",
			slog.Int("candidates", len(candidates)),
			slog.String("error", err.Error()),
		)
		return model.SweepResult{}, storeError(err)
	}
	if skipped := len(candidates) - len(expired); skipped > 0 {
		u.logger.Info("orders left pending state before expiry", slog.Int("skipped", skipped))
	}

	result.CancelledCount = len(expired)
	if len(expired) > 0 {
		result.CancelledOrders = expired
	}
	result.NotifiedCount = u.notifyExpired(ctx, expired)

	for i := range expired {
		u.publish(ctx, model.EventOrderExpired, &expired[i], now)
	}
	u.record(ctx, result)

	u.logger.Info("expiry sweep finished",
		slog.Int("cancelled", result.CancelledCount),
		slog.Int("notified", result.NotifiedCount),
	)
	return result, nil
}

// notifyExpired sends one expiry email per order with bounded parallelism.
// A failed or stalled send never stops the others; each gets notifyTimeout.
func (u *OrderLifecycle) notifyExpired(ctx context.Context, orders []model.Order) int {
	detached := context.WithoutCancel(ctx)

	var (
		sent  atomic.Int64
		group errgroup.Group
	)
	group.SetLimit(u.notifyConcurrency)

	for i := range orders {
		order := &orders[i]
		if order.CustomerEmail == "" {
			continue
		}
		group.Go(func() error {
			msg, err := u.composer.OrderExpired(order)
			if err != nil {
				u.logger.Error("render expiry notification failed",
					slog.String("order_reference", order.Reference),
					slog.String("error", err.Error()),
				)
				return nil
			}
			sendCtx, cancel := context.WithTimeout(detached, u.notifyTimeout)
			defer cancel()
			if err := u.notifier.Send(sendCtx, msg.To, msg.Subject, msg.HTML); err != nil {
				if !errors.Is(err, domainErrors.ErrNotifierDisabled) {
					u.logger.Warn("expiry notification failed",
						slog.String("order_reference", order.Reference),
						slog.String("error", err.Error()),
					)
				}
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	return int(sent.Load())
}

var fulfillmentStatuses = map[model.OrderStatus]bool{
	model.OrderStatusConfirmed: true,
	model.OrderStatusPreparing: true,
	model.OrderStatusReady:     true,
	model.OrderStatusDelivered: true,
	model.OrderStatusCancelled: true,
}

// UpdateFulfillmentStatus advances a paid order through preparation.
func (u *OrderLifecycle) UpdateFulfillmentStatus(ctx context.Context, reference string, status model.OrderStatus) (*model.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, &domainErrors.ValidationError{Fields: map[string]string{"order_reference": "is required"}}
	}
	if !fulfillmentStatuses[status] {
		return nil, fmt.Errorf("%w: unsupported fulfillment status %q", domainErrors.ErrInvalidTransition, status)
	}

	now := u.now().UTC()
	order, err := u.orders.UpdateFulfillment(ctx, reference, status, now)
	if errors.Is(err, domainErrors.ErrNotFound) {
		current, getErr := u.orders.GetByReference(ctx, reference)
		if getErr != nil {
			if errors.Is(getErr, domainErrors.ErrNotFound) {
				return nil, domainErrors.ErrNotFound
			}
			return nil, storeError(getErr)
		}
		return nil, fmt.Errorf("%w: order %s is not paid (%s)", domainErrors.ErrInvalidTransition, reference, current.PaymentStatus)
	}
	if err != nil {
		return nil, storeError(err)
	}

	u.publish(ctx, model.EventOrderStatusChanged, order, now)
	return order, nil
}

// ListOrders returns the newest orders matching filter.
func (u *OrderLifecycle) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	fields := map[string]string{}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		fields["payment_status"] = "is invalid"
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fields["status"] = "is invalid"
	}
	if len(fields) > 0 {
		return nil, &domainErrors.ValidationError{Fields: fields}
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	orders, err := u.orders.List(ctx, filter)
	if err != nil {
		return nil, storeError(err)
	}
	return orders, nil
}

// PaymentInstructions tells the customer how to pay for order.
func (u *OrderLifecycle) PaymentInstructions(order *model.Order) model.PaymentInstructions {
	return u.composer.Instructions(order)
}

func (u *OrderLifecycle) enqueue(order *model.Order, kind model.NotificationKind) {
	var (
		msg model.Notification
		err error
	)
	switch kind {
	case model.NotificationOrderConfirmation:
		if order.CustomerEmail == "" {
			return
		}
		msg, err = u.composer.OrderConfirmation(order)
	case model.NotificationAdminNewOrder:
		msg, err = u.composer.AdminNewOrder(order)
	case model.NotificationPaymentReceived:
		if order.CustomerEmail == "" {
			return
		}
		msg, err = u.composer.PaymentReceived(order)
	case model.NotificationOrderExpired:
		if order.CustomerEmail == "" {
			return
		}
		msg, err = u.composer.OrderExpired(order)
	}
	if err != nil {
		u.logger.Error("render notification failed",
			slog.String("kind", string(kind)),
			slog.String("order_reference", order.Reference),
			slog.String("error", err.Error()),
		)
		return
	}
	if msg.To == "" {
		return
	}
	if !u.outbox.Enqueue(msg) {
		u.logger.Warn("notification dropped",
			slog.String("kind", string(kind)),
			slog.String("order_reference", order.Reference),
		)
	}
}

func (u *OrderLifecycle) publish(ctx context.Context, t model.EventType, order *model.Order, at time.Time) {
	if err := u.events.Publish(ctx, model.NewOrderEvent(t, order, at)); err != nil {
		u.logger.Warn("publish order event failed",
			slog.String("event", string(t)),
			slog.String("order_reference", order.Reference),
			slog.String("error", err.Error()),
		)
	}
}

func (u *OrderLifecycle) record(ctx context.Context, result model.SweepResult) {
	u.metrics.RecordSweep(ctx, result)
}
