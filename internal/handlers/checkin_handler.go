package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/helpers"
	"github.com/farhanmaulana/eventgate/internal/models"
	"github.com/farhanmaulana/eventgate/internal/services"
)

type CheckInHandler struct {
	db            *gorm.DB
	checkIns      *services.CheckInService
	encoder       services.PayloadEncoder
	payloadSecret string
}

func NewCheckInHandler(db *gorm.DB, checkIns *services.CheckInService, encoder services.PayloadEncoder, payloadSecret string) *CheckInHandler {
	return &CheckInHandler{db: db, checkIns: checkIns, encoder: encoder, payloadSecret: payloadSecret}
}

type CheckInRequest struct {
	// Either a raw ticket code / ticket id, or a full scanned QR payload.
	Ticket  string     `json:"ticket"`
	Payload string     `json:"payload"`
	EventID *uuid.UUID `json:"event_id"`
	Method  string     `json:"method"`
	Note    string     `json:"note"`
}

func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Ticket == "" && req.Payload == "") {
		helpers.RespondWithError(c, http.StatusBadRequest, "Provide a ticket code or a scanned payload.")
		return
	}

	operatorID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	ticketRef := req.Ticket
	eventID := req.EventID
	if req.Payload != "" {
		code, payloadEvent, err := services.ParseTicketPayload(req.Payload, h.payloadSecret)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket payload.")
			return
		}
		ticketRef = code
		if eventID == nil {
			eventID = &payloadEvent
		}
	}

	attendance, err := h.checkIns.CheckIn(c.Request.Context(), services.CheckInInput{
		CodeOrID:   ticketRef,
		EventID:    eventID,
		OperatorID: operatorID,
		Method:     req.Method,
		Note:       req.Note,
	})
	if err != nil {
		var dup *services.AlreadyCheckedInError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{
				"error":         http.StatusText(http.StatusConflict),
				"message":       "Ticket already checked in.",
				"checked_in_at": dup.At,
			})
			return
		}
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Ticket checked in successfully.",
		"attendance": attendance,
	})
}

type ValidateRequest struct {
	Ticket  string    `json:"ticket" binding:"required"`
	EventID uuid.UUID `json:"event_id" binding:"required"`
}

func (h *CheckInHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	result, err := h.checkIns.Validate(c.Request.Context(), req.Ticket, req.EventID)
	if err != nil {
		helpers.RespondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TicketQR renders the signed payload of one of the caller's tickets as a
// PNG, for wallets and printouts.
func (h *CheckInHandler) TicketQR(c *gin.Context) {
	code := c.Param("code")

	userID, ok := helpers.UserIDFromContext(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	var ticket models.Ticket
	if err := h.db.First(&ticket, "code = ?", code).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	if ticket.OwnerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this ticket.")
		return
	}

	if ticket.Status == models.TicketCancelled {
		helpers.RespondWithError(c, http.StatusConflict, "Ticket has been cancelled.")
		return
	}

	payload := services.TicketPayload(ticket.Code, ticket.EventID, h.payloadSecret)
	img, err := h.encoder.Encode(payload)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", img)
}
