package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// Amount renders money as a JSON number with two decimals.
func Amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ProductName  string      `json:"product_name"`
	ProductPrice json.Number `json:"product_price"`
	Quantity     int         `json:"quantity"`
	ProductImage string      `json:"product_image,omitempty"`
}

// OrderResponse mirrors a stored order row with its items.
type OrderResponse struct {
	ID                   string                 `json:"id"`
	OrderReference       string                 `json:"order_reference"`
	Status               string                 `json:"status"`
	PaymentStatus        string                 `json:"payment_status"`
	PaymentMethod        string                 `json:"payment_method"`
	TotalAmount          json.Number            `json:"total_amount"`
	CustomerName         string                 `json:"customer_name"`
	CustomerEmail        string                 `json:"customer_email,omitempty"`
	CustomerPhone        string                 `json:"customer_phone,omitempty"`
	OrderType            string                 `json:"order_type"`
	DeliveryAddress      *model.DeliveryAddress `json:"delivery_address,omitempty"`
	DeliveryInstructions string                 `json:"delivery_instructions,omitempty"`
	ExpiresAt            time.Time              `json:"expires_at"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
	Items                []OrderItemResponse    `json:"order_items"`
}

// PaymentInstructionsResponse tells the customer where to send money.
type PaymentInstructionsResponse struct {
	Method    string      `json:"method"`
	Recipient string      `json:"recipient"`
	Amount    json.Number `json:"amount"`
	Note      string      `json:"note"`
	Deadline  time.Time   `json:"deadline"`
}

// CreateOrderResponse is returned by the checkout endpoint.
type CreateOrderResponse struct {
	Success             bool                        `json:"success"`
	OrderID             string                      `json:"order_id"`
	OrderReference      string                      `json:"order_reference"`
	TotalAmount         json.Number                 `json:"total_amount"`
	ExpiresAt           time.Time                   `json:"expires_at"`
	PaymentInstructions PaymentInstructionsResponse `json:"payment_instructions"`
	Message             string                      `json:"message"`
}

// OrderEnvelope wraps a single order.
type OrderEnvelope struct {
	Success             bool                         `json:"success"`
	Order               OrderResponse                `json:"order"`
	PaymentInstructions *PaymentInstructionsResponse `json:"payment_instructions,omitempty"`
	Message             string                       `json:"message,omitempty"`
}

// OrderListResponse is the admin listing.
type OrderListResponse struct {
	Success bool            `json:"success"`
	Orders  []OrderResponse `json:"orders"`
}

// PaymentStatusRequest updates the payment state of an order.
// OrderReference is read from the body only on the legacy route.
type PaymentStatusRequest struct {
	OrderReference string `json:"order_reference"`
	PaymentStatus  string `json:"payment_status"`
	Status         string `json:"status"`
}

// FulfillmentRequest moves a paid order through preparation.
type FulfillmentRequest struct {
	Status string `json:"status"`
}

// NewOrderResponse converts a domain order.
func NewOrderResponse(o model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductName:  it.ProductName,
			ProductPrice: Amount(it.ProductPrice),
			Quantity:     it.Quantity,
			ProductImage: it.ProductImage,
		})
	}
	return OrderResponse{
		ID:                   o.ID.String(),
		OrderReference:       o.Reference,
		Status:               string(o.Status),
		PaymentStatus:        string(o.PaymentStatus),
		PaymentMethod:        string(o.PaymentMethod),
		TotalAmount:          Amount(o.TotalAmount),
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		CustomerPhone:        o.CustomerPhone,
		OrderType:            string(o.OrderType),
		DeliveryAddress:      o.DeliveryAddress,
		DeliveryInstructions: o.DeliveryInstructions,
		ExpiresAt:            o.ExpiresAt,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
		Items:                items,
	}
}

func NewPaymentInstructionsResponse(p model.PaymentInstructions) PaymentInstructionsResponse {
	return PaymentInstructionsResponse{
		Method:    string(p.Method),
		Recipient: p.Recipient,
		Amount:    Amount(p.Amount),
		Note:      p.Note,
		Deadline:  p.Deadline,
	}
}
