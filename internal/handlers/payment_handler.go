package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farhanmaulana/eventgate/internal/helpers"
	"github.com/farhanmaulana/eventgate/internal/services"
)

// PaymentHandler receives the provider's completion callback. The webhook
// signature is verified by middleware before this runs; here we only map
// the notification onto CompletePayment, which is idempotent by order id.
type PaymentHandler struct {
	orders *services.OrderService
}

func NewPaymentHandler(orders *services.OrderService) *PaymentHandler {
	return &PaymentHandler{orders: orders}
}

type PaymentNotification struct {
	OrderID           uuid.UUID `json:"order_id" binding:"required"`
	TransactionID     string    `json:"transaction_id" binding:"required"`
	TransactionStatus string    `json:"transaction_status" binding:"required"`
}

func (h *PaymentHandler) Webhook(c *gin.Context) {
	var notification PaymentNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid notification payload.")
		return
	}

	if notification.TransactionStatus != "settlement" {
		c.JSON(http.StatusOK, gin.H{"message": "Notification ignored."})
		return
	}

	order, tickets, err := h.orders.CompletePayment(c.Request.Context(), notification.OrderID, notification.TransactionID)
	if err != nil {
		// A retried notification for an already-settled order is
		// acknowledged so the provider stops resending it.
		if errors.Is(err, services.ErrOrderNotPending) {
			c.JSON(http.StatusOK, gin.H{"message": "Order already processed."})
			return
		}
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment completed.",
		"order":   order,
		"tickets": tickets,
	})
}
