package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PromotionValidator resolves discount codes and computes discounts. An
// inapplicable code is not an error: the discount is simply zero, which
// lets order creation proceed the way a cashier would ignore an expired
// coupon.
type PromotionValidator struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewPromotionValidator(db *gorm.DB, logger *logrus.Logger) *PromotionValidator {
	return &PromotionValidator{db: db, logger: logger}
}

// AppliedPromotion is the outcome of applying a code to a subtotal.
type AppliedPromotion struct {
	Promotion *models.Promotion
	Discount  decimal.Decimal
}

// Apply looks up the code scoped to the event, checks applicability and, if
// the promotion holds, consumes one usage via a conditional update inside
// tx. The tx is the order's own transaction, so a failed order never leaves
// a consumed usage behind. A capped promotion losing the conditional update
// race degrades to "not applicable" rather than double-applying.
func (v *PromotionValidator) Apply(tx *gorm.DB, code string, eventID uuid.UUID, subtotal decimal.Decimal) (AppliedPromotion, error) {
	none := AppliedPromotion{Discount: decimal.Zero}
	if code == "" {
		return none, nil
	}

	var promotion models.Promotion
	err := tx.Where("code = ? AND event_id = ?", code, eventID).First(&promotion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return none, nil
		}
		return none, err
	}

	now := time.Now()
	if !promotion.Applicable(now) {
		return none, nil
	}

	result := tx.Model(&models.Promotion{}).
		Where("id = ? AND (usage_cap IS NULL OR used_count < usage_cap)", promotion.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return none, result.Error
	}
	if result.RowsAffected == 0 {
		v.logger.WithField("code", code).Info("promotion usage cap reached")
		return none, nil
	}

	discount := v.discountFor(&promotion, subtotal)
	return AppliedPromotion{Promotion: &promotion, Discount: discount}, nil
}

// Preview computes the discount a code would yield without consuming usage.
func (v *PromotionValidator) Preview(code string, eventID uuid.UUID, subtotal decimal.Decimal) decimal.Decimal {
	var promotion models.Promotion
	err := v.db.Where("code = ? AND event_id = ?", code, eventID).First(&promotion).Error
	if err != nil || !promotion.Applicable(time.Now()) {
		return decimal.Zero
	}
	return v.discountFor(&promotion, subtotal)
}

func (v *PromotionValidator) discountFor(promotion *models.Promotion, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch promotion.Type {
	case models.PromotionPercentage:
		discount = subtotal.Mul(promotion.Value).Div(hundred).Round(2)
	case models.PromotionFixed:
		discount = promotion.Value
	default:
		return decimal.Zero
	}

	// Clamp to [0, subtotal] so downstream pricing never sees a negative
	// discounted subtotal.
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount
}
