package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
)

func seedPromotion(t *testing.T, db *gorm.DB, eventID uuid.UUID, mutate func(*models.Promotion)) *models.Promotion {
	t.Helper()

	promotion := models.Promotion{
		Code:       "SAVE10",
		Type:       models.PromotionPercentage,
		Value:      decimal.RequireFromString("10"),
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
		EventID:    eventID,
	}
	if mutate != nil {
		mutate(&promotion)
	}
	require.NoError(t, db.Create(&promotion).Error)
	return &promotion
}

func TestPromotionValidator_PercentageDiscount(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)
	seedPromotion(t, db, event.ID, nil)

	applied, err := validator.Apply(db, "SAVE10", event.ID, d("200.00"))
	require.NoError(t, err)
	require.NotNil(t, applied.Promotion)
	assert.True(t, applied.Discount.Equal(d("20.00")), "discount %s", applied.Discount)
}

func TestPromotionValidator_FixedDiscountClamped(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)
	seedPromotion(t, db, event.ID, func(p *models.Promotion) {
		p.Code = "FLAT50"
		p.Type = models.PromotionFixed
		p.Value = d("50.00")
	})

	applied, err := validator.Apply(db, "FLAT50", event.ID, d("30.00"))
	require.NoError(t, err)
	assert.True(t, applied.Discount.Equal(d("30.00")), "discount clamped to subtotal, got %s", applied.Discount)
}

func TestPromotionValidator_NotApplicable(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)

	seedPromotion(t, db, event.ID, func(p *models.Promotion) {
		p.Code = "EXPIRED"
		p.ValidUntil = time.Now().Add(-time.Minute)
	})
	seedPromotion(t, db, event.ID, func(p *models.Promotion) {
		p.Code = "FUTURE"
		p.ValidFrom = time.Now().Add(time.Hour)
		p.ValidUntil = time.Now().Add(2 * time.Hour)
	})
	seedPromotion(t, db, event.ID, func(p *models.Promotion) {
		p.Code = "DISABLED"
		p.IsActive = false
	})

	for _, code := range []string{"EXPIRED", "FUTURE", "DISABLED", "NOSUCHCODE", ""} {
		applied, err := validator.Apply(db, code, event.ID, d("100.00"))
		require.NoError(t, err, code)
		assert.Nil(t, applied.Promotion, code)
		assert.True(t, applied.Discount.IsZero(), code)
	}
}

func TestPromotionValidator_ScopedToEvent(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)
	otherEvent := seedEvent(t, db)
	seedPromotion(t, db, event.ID, nil)

	applied, err := validator.Apply(db, "SAVE10", otherEvent.ID, d("100.00"))
	require.NoError(t, err)
	assert.Nil(t, applied.Promotion)
}

func TestPromotionValidator_UsageCap(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)
	usageCap := 1
	promotion := seedPromotion(t, db, event.ID, func(p *models.Promotion) {
		p.UsageCap = &usageCap
	})

	first, err := validator.Apply(db, "SAVE10", event.ID, d("100.00"))
	require.NoError(t, err)
	require.NotNil(t, first.Promotion)

	second, err := validator.Apply(db, "SAVE10", event.ID, d("100.00"))
	require.NoError(t, err)
	assert.Nil(t, second.Promotion, "cap of one admits exactly one application")
	assert.True(t, second.Discount.IsZero())

	var fresh models.Promotion
	require.NoError(t, db.First(&fresh, "id = ?", promotion.ID).Error)
	assert.Equal(t, 1, fresh.UsedCount)
}

func TestPromotionValidator_UsageRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)
	promotion := seedPromotion(t, db, event.ID, nil)

	sentinel := assert.AnError
	err := db.Transaction(func(tx *gorm.DB) error {
		applied, err := validator.Apply(tx, "SAVE10", event.ID, d("100.00"))
		require.NoError(t, err)
		require.NotNil(t, applied.Promotion)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// The order never persisted, so the usage must not stick.
	var fresh models.Promotion
	require.NoError(t, db.First(&fresh, "id = ?", promotion.ID).Error)
	assert.Equal(t, 0, fresh.UsedCount)
}

func TestPromotionValidator_PreviewDoesNotConsume(t *testing.T) {
	db := newTestDB(t)
	validator := NewPromotionValidator(db, newTestLogger())
	event := seedEvent(t, db)
	promotion := seedPromotion(t, db, event.ID, nil)

	discount := validator.Preview("SAVE10", event.ID, d("100.00"))
	assert.True(t, discount.Equal(d("10.00")))

	var fresh models.Promotion
	require.NoError(t, db.First(&fresh, "id = ?", promotion.ID).Error)
	assert.Equal(t, 0, fresh.UsedCount)
}

func TestDisabledFlagsPersistThroughCreate(t *testing.T) {
	db := newTestDB(t)
	event := seedEvent(t, db)

	promotion := seedPromotion(t, db, event.ID, func(p *models.Promotion) {
		p.IsActive = false
	})
	var freshPromotion models.Promotion
	require.NoError(t, db.First(&freshPromotion, "id = ?", promotion.ID).Error)
	assert.False(t, freshPromotion.IsActive, "deactivated promotion must persist as inactive")

	hidden := models.TicketType{
		Name:    "Hidden Tier",
		Price:   d("25.00"),
		Total:   5,
		Visible: false,
		EventID: event.ID,
	}
	require.NoError(t, db.Create(&hidden).Error)
	var freshTT models.TicketType
	require.NoError(t, db.First(&freshTT, "id = ?", hidden.ID).Error)
	assert.False(t, freshTT.Visible, "hidden ticket type must persist as hidden")
}
