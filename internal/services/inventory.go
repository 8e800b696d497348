package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
)

// InventoryLedger owns the sold counters on ticket types. Both mutations
// are single conditional UPDATE statements, so the capacity check and the
// counter move are one atomic operation at the database; workers on other
// machines contend on the row, not on an in-process lock.
type InventoryLedger struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewInventoryLedger(db *gorm.DB, logger *logrus.Logger) *InventoryLedger {
	return &InventoryLedger{db: db, logger: logger}
}

// Reserve increments sold by quantity if and only if capacity remains.
// This is the inventory commit point for payment completion.
func (l *InventoryLedger) Reserve(tx *gorm.DB, ticketTypeID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	result := tx.Model(&models.TicketType{}).
		Where("id = ? AND sold + ? <= total", ticketTypeID, quantity).
		UpdateColumn("sold", gorm.Expr("sold + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.TicketType{}).Where("id = ?", ticketTypeID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTicketTypeNotFound
		}
		l.logger.WithFields(logrus.Fields{
			"ticket_type_id": ticketTypeID,
			"quantity":       quantity,
		}).Warn("reservation rejected: capacity exhausted")
		return ErrInsufficientAvailability
	}
	return nil
}

// Release decrements sold by quantity, never below zero. Used by refunds to
// hand units back to the pool.
func (l *InventoryLedger) Release(tx *gorm.DB, ticketTypeID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	result := tx.Model(&models.TicketType{}).
		Where("id = ? AND sold >= ?", ticketTypeID, quantity).
		UpdateColumn("sold", gorm.Expr("sold - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Sold below the refunded quantity means counters were corrected
		// elsewhere; floor at zero rather than going negative.
		l.logger.WithFields(logrus.Fields{
			"ticket_type_id": ticketTypeID,
			"quantity":       quantity,
		}).Warn("release clamped to zero")
		return tx.Model(&models.TicketType{}).
			Where("id = ?", ticketTypeID).
			UpdateColumn("sold", 0).Error
	}
	return nil
}

// Available returns total - sold as a point-in-time read for order
// validation and availability displays.
func (l *InventoryLedger) Available(ticketTypeID uuid.UUID) (int, error) {
	var tt models.TicketType
	if err := l.db.First(&tt, "id = ?", ticketTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTicketTypeNotFound
		}
		return 0, err
	}
	return tt.Available(), nil
}
