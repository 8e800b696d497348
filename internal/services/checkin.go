package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
	"github.com/farhanmaulana/eventgate/internal/monitoring"
)

// CheckInService redeems tickets. Exactly-once semantics rest on the
// unique (ticket_id, event_id) index on attendances: the insert is
// attempted first and "already checked in" is derived from the constraint
// violation, so two scanners racing on the same ticket cannot both win.
type CheckInService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewCheckInService(db *gorm.DB, logger *logrus.Logger) *CheckInService {
	return &CheckInService{db: db, logger: logger}
}

type CheckInInput struct {
	// CodeOrID is the scanned ticket code, or a ticket uuid for manual
	// desk check-in.
	CodeOrID   string
	EventID    *uuid.UUID
	OperatorID uuid.UUID
	Method     string
	Note       string
}

// CheckIn validates the ticket, records attendance and marks the ticket
// used, in one transaction.
func (s *CheckInService) CheckIn(ctx context.Context, input CheckInInput) (*models.Attendance, error) {
	var attendance models.Attendance

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := s.resolveTicket(tx, input.CodeOrID)
		if err != nil {
			return err
		}

		eventID := ticket.EventID
		if input.EventID != nil {
			if *input.EventID != ticket.EventID {
				return ErrWrongEvent
			}
			eventID = *input.EventID
		}

		if ticket.Status == models.TicketCancelled {
			return ErrTicketCancelled
		}

		method := input.Method
		if method == "" {
			method = "scan"
		}
		attendance = models.Attendance{
			TicketID:    ticket.ID,
			EventID:     eventID,
			CheckedInAt: time.Now(),
			Method:      method,
			OperatorID:  input.OperatorID,
			Note:        input.Note,
		}

		if err := tx.Create(&attendance).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCheckedIn
			}
			return err
		}

		// A used ticket without an attendance row cannot occur, both
		// writes share this transaction; still keep the move legal.
		if !ticket.Status.CanTransitionTo(models.TicketUsed) {
			return ErrAlreadyCheckedIn
		}

		return tx.Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Update("status", models.TicketUsed).Error
	})
	if err != nil {
		// The original timestamp is looked up only once the transaction
		// has returned its connection to the pool; a query through a
		// second session while the transaction is still open would starve
		// on an exhausted pool.
		if errors.Is(err, ErrAlreadyCheckedIn) {
			err = s.duplicateError(ctx, attendance.TicketID, attendance.EventID)
		}
		monitoring.RecordCheckIn(outcomeFor(err))
		return nil, err
	}

	monitoring.RecordCheckIn("ok")
	s.logger.WithFields(logrus.Fields{
		"ticket_id": attendance.TicketID,
		"event_id":  attendance.EventID,
		"method":    attendance.Method,
	}).Info("ticket checked in")

	return &attendance, nil
}

// ValidationResult is what scanner preview UIs render before committing a
// check-in.
type ValidationResult struct {
	Valid       bool       `json:"valid"`
	Reason      string     `json:"reason,omitempty"`
	TicketID    uuid.UUID  `json:"ticket_id,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

// Validate performs the same checks as CheckIn without creating a record
// or mutating ticket state.
func (s *CheckInService) Validate(ctx context.Context, codeOrID string, eventID uuid.UUID) (ValidationResult, error) {
	db := s.db.WithContext(ctx)

	ticket, err := s.resolveTicket(db, codeOrID)
	if err != nil {
		if errors.Is(err, ErrInvalidTicket) {
			return ValidationResult{Valid: false, Reason: "invalid ticket"}, nil
		}
		return ValidationResult{}, err
	}

	if ticket.EventID != eventID {
		return ValidationResult{Valid: false, Reason: "wrong event", TicketID: ticket.ID}, nil
	}
	if ticket.Status == models.TicketCancelled {
		return ValidationResult{Valid: false, Reason: "ticket cancelled", TicketID: ticket.ID}, nil
	}

	var attendance models.Attendance
	err = db.Where("ticket_id = ? AND event_id = ?", ticket.ID, eventID).First(&attendance).Error
	if err == nil {
		return ValidationResult{
			Valid:       false,
			Reason:      "already checked in",
			TicketID:    ticket.ID,
			CheckedInAt: &attendance.CheckedInAt,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ValidationResult{}, err
	}

	return ValidationResult{Valid: true, TicketID: ticket.ID}, nil
}

func (s *CheckInService) resolveTicket(db *gorm.DB, codeOrID string) (*models.Ticket, error) {
	var ticket models.Ticket
	var err error
	if id, parseErr := uuid.Parse(codeOrID); parseErr == nil {
		err = db.First(&ticket, "id = ?", id).Error
	} else {
		err = db.First(&ticket, "code = ?", codeOrID).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTicket
		}
		return nil, err
	}
	return &ticket, nil
}

// duplicateError attaches the first check-in's timestamp to the duplicate
// rejection. Runs strictly after the check-in transaction has completed.
func (s *CheckInService) duplicateError(ctx context.Context, ticketID, eventID uuid.UUID) error {
	var existing models.Attendance
	err := s.db.WithContext(ctx).
		Where("ticket_id = ? AND event_id = ?", ticketID, eventID).
		First(&existing).Error
	if err != nil {
		return ErrAlreadyCheckedIn
	}
	return &AlreadyCheckedInError{At: existing.CheckedInAt}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyCheckedIn):
		return "duplicate"
	case errors.Is(err, ErrInvalidTicket):
		return "invalid"
	case errors.Is(err, ErrWrongEvent):
		return "wrong_event"
	case errors.Is(err, ErrTicketCancelled):
		return "cancelled"
	default:
		return "error"
	}
}
