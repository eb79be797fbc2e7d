package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the field raced by the payment update and the expiry sweep.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusExpired PaymentStatus = "expired"
)

// IsTerminal reports whether no further payment transition is allowed.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusExpired
}

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusExpired:
		return true
	}
	return false
}

// OrderStatus is the coarse fulfillment state.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderType tells how the customer receives the order.
type OrderType string

const (
	OrderTypePickup   OrderType = "pickup"
	OrderTypeDelivery OrderType = "delivery"
)

// PaymentMethod selects the manual payment channel.
type PaymentMethod string

const (
	PaymentMethodZelle   PaymentMethod = "zelle"
	PaymentMethodCashApp PaymentMethod = "cashapp"
)

// DeliveryAddress is stored as JSON next to the order header.
type DeliveryAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Order is a customer order with a fixed payment deadline.
type Order struct {
	ID                   uuid.UUID
	Reference            string
	Status               OrderStatus
	PaymentStatus        PaymentStatus
	PaymentMethod        PaymentMethod
	TotalAmount          decimal.Decimal
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	OrderType            OrderType
	DeliveryAddress      *DeliveryAddress
	DeliveryInstructions string
	Items                []OrderItem
	ExpiresAt            time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Expired reports whether the payment window has elapsed at now.
func (o *Order) Expired(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}

// OrderItem is a snapshot of a cart line at order time.
type OrderItem struct {
	ID           int64
	OrderID      uuid.UUID
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	ProductImage string
}

// Subtotal returns price multiplied by quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderFilter narrows admin listings. Empty fields match everything.
type OrderFilter struct {
	PaymentStatus PaymentStatus
	Status        OrderStatus
	Limit         int
}

// PaymentInstructions tell the customer where to send money.
type PaymentInstructions struct {
	Method    PaymentMethod
	Recipient string
	Amount    decimal.Decimal
	Note      string
	Deadline  time.Time
}
