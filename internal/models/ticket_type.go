package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TicketType is the inventory unit: a purchasable admission category with
// finite capacity. Sold is only ever mutated through conditional updates
// (see services.InventoryLedger) so that 0 <= sold <= total holds under
// concurrent payment completions and refunds.
type TicketType struct {
	gorm.Model
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string          `gorm:"not null;default:'USD'" json:"currency"`
	Total       int             `gorm:"not null" json:"total"`
	Sold        int             `gorm:"not null;default:0" json:"sold"`
	MaxPerOrder *int            `json:"max_per_order,omitempty"`
	SaleStart   *time.Time      `json:"sale_start,omitempty"`
	SaleEnd     *time.Time      `json:"sale_end,omitempty"`
	Visible     bool            `gorm:"not null" json:"visible"`
	EventID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"event_id"`
	Event       Event           `json:"-"`
}

func (tt *TicketType) BeforeCreate(tx *gorm.DB) (err error) {
	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}
	return
}

// Available is a point-in-time read. The authoritative capacity check is
// the conditional increment at payment completion.
func (tt *TicketType) Available() int {
	return tt.Total - tt.Sold
}

// OnSale reports whether the type can be ordered at the given time.
func (tt *TicketType) OnSale(now time.Time) bool {
	if !tt.Visible {
		return false
	}
	if tt.SaleStart != nil && now.Before(*tt.SaleStart) {
		return false
	}
	if tt.SaleEnd != nil && now.After(*tt.SaleEnd) {
		return false
	}
	return true
}
