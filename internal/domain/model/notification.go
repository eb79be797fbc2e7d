package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies the message template.
type NotificationKind string

const (
	NotificationOrderConfirmation NotificationKind = "order_confirmation"
	NotificationAdminNewOrder     NotificationKind = "admin_new_order"
	NotificationPaymentReceived   NotificationKind = "payment_received"
	NotificationOrderExpired      NotificationKind = "order_expired"
)

// Notification is a rendered email ready to be sent.
type Notification struct {
	Kind      NotificationKind
	Reference string
	To        string
	Subject   string
	HTML      string
}

// EventType names an order lifecycle event.
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderPaid          EventType = "order.paid"
	EventOrderExpired       EventType = "order.expired"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// OrderEvent is published after a committed transition.
type OrderEvent struct {
	Type          EventType     `json:"type"`
	OrderID       uuid.UUID     `json:"order_id"`
	Reference     string        `json:"order_reference"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Status        OrderStatus   `json:"status"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// NewOrderEvent captures the current state of order.
func NewOrderEvent(t EventType, order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          t,
		OrderID:       order.ID,
		Reference:     order.Reference,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
		OccurredAt:    at,
	}
}
