package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketActive: {TicketUsed, TicketCancelled},
}

func (s TicketStatus) CanTransitionTo(next TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Ticket is one individually redeemable admission unit, minted only at
// payment completion. Code is the external identifier scanners present at
// check-in; the unique index is what makes collision retry safe.
type Ticket struct {
	gorm.Model
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Code         string       `gorm:"uniqueIndex;not null" json:"code"`
	Status       TicketStatus `gorm:"not null;default:'active';index" json:"status"`
	IssuedAt     time.Time    `gorm:"not null" json:"issued_at"`
	Seat         *string      `json:"seat,omitempty"`
	OrderID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_id"`
	Order        Order        `json:"-"`
	TicketTypeID uuid.UUID    `gorm:"type:uuid;not null;index" json:"ticket_type_id"`
	TicketType   TicketType   `json:"-"`
	EventID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"event_id"`
	OwnerID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"owner_id"`
}

func (ticket *Ticket) BeforeCreate(tx *gorm.DB) (err error) {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return
}
