package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/server/http/dto"
	"github.com/polkiloo/sweetsbybella/internal/usecase"
)

// IdempotencyHeader carries the client retry token for checkout.
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// OrderHandler manages customer checkout endpoints.
type OrderHandler struct {
	facade OrderFacade
	logger *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, logger: logger}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req usecase.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	if len(key) > maxIdempotencyKeyLen {
		badRequest(c, "idempotency key too long")
		return
	}

	result, replayed, err := h.facade.CreateOrder(c.Request.Context(), key, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	message := "Order created successfully"
	if replayed {
		status = http.StatusOK
		message = "Order already created"
	}
	c.JSON(status, dto.CreateOrderResponse{
		Success:             true,
		OrderID:             result.Order.ID.String(),
		OrderReference:      result.Order.Reference,
		TotalAmount:         dto.Amount(result.Order.TotalAmount),
		ExpiresAt:           result.Order.ExpiresAt,
		PaymentInstructions: dto.NewPaymentInstructionsResponse(result.Instructions),
		Message:             message,
	})
}

// Get handles GET /api/orders/:reference. Pending orders include payment instructions.
func (h *OrderHandler) Get(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		badRequest(c, "order reference is required")
		return
	}

	order, err := h.facade.Order(c.Request.Context(), reference)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := dto.OrderEnvelope{Success: true, Order: dto.NewOrderResponse(*order)}
	if order.PaymentStatus == model.PaymentStatusPending {
		instructions := dto.NewPaymentInstructionsResponse(h.facade.PaymentInstructions(order))
		resp.PaymentInstructions = &instructions
	}
	c.JSON(http.StatusOK, resp)
}
