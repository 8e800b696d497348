package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PromotionType string

const (
	PromotionPercentage PromotionType = "percentage"
	PromotionFixed      PromotionType = "fixed"
)

// Promotion is a discount code scoped to one event. UsedCount only moves
// through the capped conditional update in services.PromotionValidator, in
// the same transaction as the order it is attributed to.
type Promotion struct {
	gorm.Model
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Code       string          `gorm:"not null;uniqueIndex:idx_promotion_event_code" json:"code"`
	Type       PromotionType   `gorm:"not null" json:"type"`
	Value      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"value"`
	ValidFrom  time.Time       `gorm:"not null" json:"valid_from"`
	ValidUntil time.Time       `gorm:"not null" json:"valid_until"`
	UsageCap   *int            `json:"usage_cap,omitempty"`
	UsedCount  int             `gorm:"not null;default:0" json:"used_count"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	EventID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_promotion_event_code" json:"event_id"`
	Event      Event           `json:"-"`
}

func (promotion *Promotion) BeforeCreate(tx *gorm.DB) (err error) {
	if promotion.ID == uuid.Nil {
		promotion.ID = uuid.New()
	}
	return
}

// Applicable reports whether the promotion can be applied at the given
// time, before the usage cap is contended for.
func (promotion *Promotion) Applicable(now time.Time) bool {
	if !promotion.IsActive {
		return false
	}
	if now.Before(promotion.ValidFrom) || now.After(promotion.ValidUntil) {
		return false
	}
	if promotion.UsageCap != nil && promotion.UsedCount >= *promotion.UsageCap {
		return false
	}
	return true
}
