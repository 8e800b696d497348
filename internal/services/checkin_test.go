package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/internal/models"
)

// mintTestTicket pays for a one-unit order and returns its ticket.
func mintTestTicket(t *testing.T, db *gorm.DB) *models.Ticket {
	t.Helper()

	svc := newTestOrderService(t, db, nil, nil)
	event := seedEvent(t, db)
	tt := seedTicketType(t, db, event.ID, "50.00", 10)
	buyer := seedPurchaser(t, db)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  buyer.ID,
		EventID: event.ID,
		Items:   []LineItemInput{{TicketTypeID: tt.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, tickets, err := svc.CompletePayment(context.Background(), order.ID, "txn-checkin")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	return &tickets[0]
}

func TestCheckIn_ByCode(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)

	attendance, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		OperatorID: operator.ID,
		Note:       "gate A",
	})
	require.NoError(t, err)

	assert.Equal(t, ticket.ID, attendance.TicketID)
	assert.Equal(t, ticket.EventID, attendance.EventID)
	assert.Equal(t, "scan", attendance.Method, "method defaults to scan")
	assert.Equal(t, "gate A", attendance.Note)
	assert.False(t, attendance.CheckedInAt.IsZero())

	var fresh models.Ticket
	require.NoError(t, db.First(&fresh, "id = ?", ticket.ID).Error)
	assert.Equal(t, models.TicketUsed, fresh.Status)
}

func TestCheckIn_ByTicketID(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)

	attendance, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.ID.String(),
		OperatorID: operator.ID,
		Method:     "manual",
	})
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, attendance.TicketID)
	assert.Equal(t, "manual", attendance.Method)
}

func TestCheckIn_DuplicateReportsOriginalTime(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)

	first, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		OperatorID: operator.ID,
	})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		OperatorID: operator.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	var dup *AlreadyCheckedInError
	require.ErrorAs(t, err, &dup)
	assert.WithinDuration(t, first.CheckedInAt, dup.At, time.Second, "duplicate reports the first check-in time")

	// Still exactly one attendance row.
	var count int64
	require.NoError(t, db.Model(&models.Attendance{}).Where("ticket_id = ?", ticket.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCheckIn_DuplicateCompletesOnExhaustedPool(t *testing.T) {
	// The test database allows a single open connection, so a duplicate
	// check-in that queried through a second session while its own
	// transaction still held the connection would never return.
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		OperatorID: operator.ID,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.CheckIn(context.Background(), CheckInInput{
			CodeOrID:   ticket.Code,
			OperatorID: operator.ID,
		})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	case <-time.After(5 * time.Second):
		t.Fatal("duplicate check-in did not complete")
	}
}

func TestCheckIn_WrongEvent(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)
	otherEventID := uuid.New()

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		EventID:    &otherEventID,
		OperatorID: operator.ID,
	})
	assert.ErrorIs(t, err, ErrWrongEvent)

	var fresh models.Ticket
	require.NoError(t, db.First(&fresh, "id = ?", ticket.ID).Error)
	assert.Equal(t, models.TicketActive, fresh.Status, "rejected scan leaves the ticket untouched")
}

func TestCheckIn_CancelledTicket(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	require.NoError(t, db.Model(ticket).Update("status", models.TicketCancelled).Error)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		OperatorID: operator.ID,
	})
	assert.ErrorIs(t, err, ErrTicketCancelled)
}

func TestCheckIn_UnknownTicket(t *testing.T) {
	db := newTestDB(t)
	svc := NewCheckInService(db, newTestLogger())

	_, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   "NOSUCHCODE42",
		OperatorID: uuid.New(),
	})
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestValidate(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())

	result, err := svc.Validate(context.Background(), ticket.Code, ticket.EventID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, ticket.ID, result.TicketID)

	// Validation is read-only: repeatable, ticket still active.
	result, err = svc.Validate(context.Background(), ticket.Code, ticket.EventID)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	var fresh models.Ticket
	require.NoError(t, db.First(&fresh, "id = ?", ticket.ID).Error)
	assert.Equal(t, models.TicketActive, fresh.Status)
}

func TestValidate_Rejections(t *testing.T) {
	db := newTestDB(t)
	ticket := mintTestTicket(t, db)
	svc := NewCheckInService(db, newTestLogger())
	operator := seedPurchaser(t, db)

	result, err := svc.Validate(context.Background(), "NOSUCHCODE42", ticket.EventID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "invalid ticket", result.Reason)

	result, err = svc.Validate(context.Background(), ticket.Code, uuid.New())
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "wrong event", result.Reason)

	attendance, err := svc.CheckIn(context.Background(), CheckInInput{
		CodeOrID:   ticket.Code,
		OperatorID: operator.ID,
	})
	require.NoError(t, err)

	result, err = svc.Validate(context.Background(), ticket.Code, ticket.EventID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "already checked in", result.Reason)
	require.NotNil(t, result.CheckedInAt)
	assert.WithinDuration(t, attendance.CheckedInAt, *result.CheckedInAt, time.Second)
}
