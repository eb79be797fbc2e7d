package dto

import (
	"fmt"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

// SweepResponse reports one expiry sweep run.
type SweepResponse struct {
	Success         bool            `json:"success"`
	Message         string          `json:"message"`
	CancelledCount  int             `json:"cancelled_count"`
	NotifiedCount   int             `json:"notified_count"`
	EmailsSent      int             `json:"emails_sent"`
	CancelledOrders []OrderResponse `json:"cancelled_orders"`
}

func NewSweepResponse(r model.SweepResult) SweepResponse {
	orders := make([]OrderResponse, 0, len(r.CancelledOrders))
	for _, o := range r.CancelledOrders {
		orders = append(orders, NewOrderResponse(o))
	}
	msg := "No expired orders found"
	if r.CancelledCount > 0 {
		msg = fmt.Sprintf("%d expired orders cancelled", r.CancelledCount)
	}
	return SweepResponse{
		Success:         true,
		Message:         msg,
		CancelledCount:  r.CancelledCount,
		NotifiedCount:   r.NotifiedCount,
		EmailsSent:      r.NotifiedCount,
		CancelledOrders: orders,
	}
}
