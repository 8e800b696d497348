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

type PromotionRequest struct {
	Code       string               `json:"code" binding:"required"`
	Type       models.PromotionType `json:"type" binding:"required,oneof=percentage fixed"`
	Value      decimal.Decimal      `json:"value" binding:"required"`
	ValidFrom  time.Time            `json:"valid_from" binding:"required"`
	ValidUntil time.Time            `json:"valid_until" binding:"required"`
	UsageCap   *int                 `json:"usage_cap"`
}

func CreatePromotion(c *gin.Context) {
	var req PromotionRequest
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

	promotion := models.Promotion{
		Code:       req.Code,
		Type:       req.Type,
		Value:      req.Value,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		UsageCap:   req.UsageCap,
		IsActive:   true,
		EventID:    eventID,
	}

	if err := gormDB.Create(&promotion).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			helpers.RespondWithError(c, http.StatusConflict, "A promotion with this code already exists for the event.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create promotion.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Promotion created successfully.",
		"promotion_id": promotion.ID,
	})
}

func ListPromotions(c *gin.Context) {
	eventID := c.Param("id")

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
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to view its promotions.")
		return
	}

	var promotions []models.Promotion
	if err := gormDB.Where("event_id = ?", eventID).Order("created_at DESC").Find(&promotions).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving promotions.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"promotions": promotions})
}
