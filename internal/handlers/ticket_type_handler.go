package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/helpers"
	"github.com/farhanmaulana/eventgate/internal/models"
)

type TicketTypeRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Currency    string          `json:"currency"`
	Total       int             `json:"total" binding:"required,min=1"`
	MaxPerOrder *int            `json:"max_per_order"`
	SaleStart   *time.Time      `json:"sale_start"`
	SaleEnd     *time.Time      `json:"sale_end"`
	Visible     *bool           `json:"visible"`
}

func CreateTicketType(c *gin.Context) {
	var req TicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	userID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	gormDB, ok := helpers.DatabaseFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ? AND user_id = ?", eventID, userID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to modify it.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying event ownership.")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	ticketType := models.TicketType{
		Name:        req.Name,
		Price:       req.Price,
		Currency:    currency,
		Total:       req.Total,
		MaxPerOrder: req.MaxPerOrder,
		SaleStart:   req.SaleStart,
		SaleEnd:     req.SaleEnd,
		Visible:     visible,
		EventID:     eventID,
	}

	if err := gormDB.Create(&ticketType).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create ticket type.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Ticket type created successfully.",
		"ticket_type_id": ticketType.ID,
	})
}

func ListTicketTypes(c *gin.Context) {
	eventID := c.Param("id")

	gormDB, ok := helpers.DatabaseFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var ticketTypes []models.TicketType
	err := gormDB.Where("event_id = ? AND visible = ?", eventID, true).
		Order("price ASC").Find(&ticketTypes).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket types.")
		return
	}

	type availability struct {
		models.TicketType
		Available int `json:"available"`
	}
	out := make([]availability, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		out = append(out, availability{TicketType: tt, Available: tt.Available()})
	}

	c.JSON(http.StatusOK, gin.H{"ticket_types": out})
}
