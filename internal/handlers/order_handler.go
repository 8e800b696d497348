package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farhanmaulana/eventgate/internal/helpers"
	"github.com/farhanmaulana/eventgate/internal/services"
)

// OrderHandler exposes the order lifecycle over HTTP. It stays thin: all
// validation beyond request shape lives in the service.
type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type OrderLineRequest struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	EventID       uuid.UUID          `json:"event_id" binding:"required"`
	Items         []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	BillingName   string             `json:"billing_name" binding:"required"`
	BillingEmail  string             `json:"billing_email" binding:"required,email"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	DiscountCode  string             `json:"discount_code"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	input := services.CreateOrderInput{
		UserID:        userID,
		EventID:       req.EventID,
		BillingName:   req.BillingName,
		BillingEmail:  req.BillingEmail,
		PaymentMethod: req.PaymentMethod,
		DiscountCode:  req.DiscountCode,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.LineItemInput{
			TicketTypeID: item.TicketTypeID,
			Quantity:     item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), input)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully.",
		"order":   order,
	})
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	userID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	page, err := helpers.StringToInt(c.DefaultQuery("page", "1"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}
	limit, err := helpers.StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	userID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully.",
		"order":   order,
	})
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (h *OrderHandler) Refund(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid order ID.")
		return
	}

	role, _ := c.Get("role")
	if role != "admin" && role != "organizer" {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to refund orders.")
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid refund payload.")
		return
	}

	order, err := h.orders.RefundOrder(c.Request.Context(), orderID, req.Amount)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order refunded successfully.",
		"order":   order,
	})
}
