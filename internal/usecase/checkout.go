package usecase

import (
	"context"
	"log/slog"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
)

// Checkout deduplicates order submissions that carry a client retry token.
type Checkout struct {
	lifecycle *OrderLifecycle
	keys      IdempotencyStore
	logger    *slog.Logger
}

func NewCheckout(lifecycle *OrderLifecycle, keys IdempotencyStore, logger *slog.Logger) *Checkout {
	return &Checkout{lifecycle: lifecycle, keys: keys, logger: logger}
}

// Submit creates an order once per key. A repeated key replays the stored
// order with replayed=true; a key whose first request is still running gives
// ErrRequestInFlight. An empty key bypasses deduplication.
func (c *Checkout) Submit(ctx context.Context, key string, in CreateOrderInput) (result *CreateOrderResult, replayed bool, err error) {
	if key == "" {
		result, err = c.lifecycle.CreateOrder(ctx, in)
		return result, false, err
	}

	reference, reserved, err := c.keys.Reserve(ctx, key)
	if err != nil {
		return nil, false, storeError(err)
	}
	if !reserved {
		if reference == "" {
			return nil, false, domainErrors.ErrRequestInFlight
		}
		order, err := c.lifecycle.GetOrderByReference(ctx, reference)
		if err != nil {
			return nil, false, err
		}
		return &CreateOrderResult{Order: order, Instructions: c.lifecycle.PaymentInstructions(order)}, true, nil
	}

	result, err = c.lifecycle.CreateOrder(ctx, in)
	if err != nil {
		if releaseErr := c.keys.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			c.logger.Warn("release idempotency key failed",
				slog.String("error", releaseErr.Error()),
			)
		}
		return nil, false, err
	}

	if err := c.keys.Complete(context.WithoutCancel(ctx), key, result.Order.Reference); err != nil {
		c.logger.Warn("complete idempotency key failed",
			slog.String("order_reference", result.Order.Reference),
			slog.String("error", err.Error()),
		)
	}
	return result, false, nil
}

