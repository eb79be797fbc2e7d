package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/sweetsbybella/internal/domain/errors"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
	"github.com/polkiloo/sweetsbybella/internal/server/http/dto"
	"github.com/polkiloo/sweetsbybella/internal/server/http/middleware"
)

// AdminHandler serves the shop dashboard.
type AdminHandler struct {
	facade AdminFacade
	logger *slog.Logger
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{facade: facade, logger: logger}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	token, err := h.facade.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	middleware.SetAdminCookie(c, token)
	c.JSON(http.StatusOK, dto.LoginResponse{Success: true, Token: token})
}

// List handles GET /api/admin/orders?payment_status=&status=&limit=.
func (h *AdminHandler) List(c *gin.Context) {
	filter := model.OrderFilter{
		PaymentStatus: model.PaymentStatus(c.Query("payment_status")),
		Status:        model.OrderStatus(c.Query("status")),
	}
	fields := map[string]string{}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		fields["payment_status"] = "unknown payment status"
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fields["status"] = "unknown order status"
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			fields["limit"] = "must be a positive integer"
		}
		filter.Limit = limit
	}
	if len(fields) > 0 {
		respondError(c, h.logger, &domainErrors.ValidationError{Fields: fields})
		return
	}

	orders, err := h.facade.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := dto.OrderListResponse{Success: true, Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePaymentStatus handles POST /api/admin/orders/:reference/payment-status.
// The legacy POST /update-payment-status route passes the reference in the body.
func (h *AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	var req dto.PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		reference = strings.TrimSpace(req.OrderReference)
	}

	to := model.PaymentStatus(strings.TrimSpace(req.PaymentStatus))
	status := model.OrderStatus(strings.TrimSpace(req.Status))
	fields := map[string]string{}
	if reference == "" {
		fields["order_reference"] = "is required"
	}
	if !to.Valid() {
		fields["payment_status"] = "must be one of pending, paid, expired"
	}
	if status != "" && !status.Valid() {
		fields["status"] = "unknown order status"
	}
	if len(fields) > 0 {
		respondError(c, h.logger, &domainErrors.ValidationError{Fields: fields})
		return
	}

	order, err := h.facade.UpdatePaymentStatus(c.Request.Context(), reference, to, status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderEnvelope{
		Success: true,
		Order:   dto.NewOrderResponse(*order),
		Message: "Payment status updated successfully",
	})
}

// UpdateFulfillment handles PATCH /api/admin/orders/:reference/status.
func (h *AdminHandler) UpdateFulfillment(c *gin.Context) {
	var req dto.FulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	status := model.OrderStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		respondError(c, h.logger, &domainErrors.ValidationError{Fields: map[string]string{"status": "unknown order status"}})
		return
	}

	order, err := h.facade.UpdateFulfillmentStatus(c.Request.Context(), c.Param("reference"), status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OrderEnvelope{
		Success: true,
		Order:   dto.NewOrderResponse(*order),
		Message: "Order status updated successfully",
	})
}
