package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance records a ticket being redeemed for an event. The composite
// unique index on (ticket_id, event_id) is the authoritative check-in
// idempotency gate: a second insert for the same pair fails at the
// constraint, not at an advisory lookup.
type Attendance struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	TicketID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_ticket_event" json:"ticket_id"`
	Ticket      Ticket    `json:"-"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_ticket_event" json:"event_id"`
	CheckedInAt time.Time `gorm:"not null" json:"checked_in_at"`
	Method      string    `gorm:"not null;default:'scan'" json:"method"`
	OperatorID  uuid.UUID `gorm:"type:uuid" json:"operator_id"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (attendance *Attendance) BeforeCreate(tx *gorm.DB) (err error) {
	if attendance.ID == uuid.Nil {
		attendance.ID = uuid.New()
	}
	return
}
